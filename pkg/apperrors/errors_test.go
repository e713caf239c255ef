package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cause := errors.New("boom")

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"transient rpc", TransientRPC("op", "evm-base", cause), KindTransientRPC},
		{"bridge waiting", ChainRevertBridgeWaiting("op", "evm-base", cause), KindChainRevertBridgeWaiting},
		{"revert permanent", ChainRevertPermanent("op", "evm-base", cause), KindChainRevertPermanent},
		{"vaa not found", VAANotFound("op", cause), KindVAANotFound},
		{"plain error", cause, KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(TransientRPC("op", "chain", errors.New("x"))))
	require.True(t, Retryable(ChainRevertBridgeWaiting("op", "chain", errors.New("x"))))
	require.True(t, Retryable(VAANotFound("op", errors.New("x"))))
	require.False(t, Retryable(ChainRevertPermanent("op", "chain", errors.New("x"))))
	require.False(t, Retryable(Validation("op", errors.New("x"))))
	require.False(t, Retryable(errors.New("unrelated")))
}

func TestErrorUnwrapAndMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := TransientRPC("handler.evm.Finalize", "base-mainnet", cause)

	require.True(t, errors.Is(err, cause))
	require.Equal(t, "handler.evm.Finalize[base-mainnet]: transient_rpc: connection reset", err.Error())

	noChain := Validation("btctx.Parse", cause)
	require.Equal(t, fmt.Sprintf("btctx.Parse: validation: %v", cause), noChain.Error())
}
