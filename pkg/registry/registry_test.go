package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

type fakeHandler struct {
	name, platform string
}

func (f *fakeHandler) ChainName() string                                      { return f.name }
func (f *fakeHandler) Platform() string                                       { return f.platform }
func (f *fakeHandler) Initialize(ctx context.Context, d *store.Deposit) error { return nil }
func (f *fakeHandler) Finalize(ctx context.Context, d *store.Deposit) error   { return nil }
func (f *fakeHandler) PastDepositCheck(ctx context.Context, sinceBlock uint64) ([]*store.Deposit, error) {
	return nil, nil
}
func (f *fakeHandler) CheckDepositStatus(ctx context.Context, id string) (*store.DepositStatus, error) {
	return nil, nil
}
func (f *fakeHandler) SetupListeners(ctx context.Context) error           { return nil }
func (f *fakeHandler) GetLatestBlock(ctx context.Context) (uint64, error) { return 0, nil }
func (f *fakeHandler) SupportsPastDepositCheck() bool                     { return true }

func TestRegisterAndGet(t *testing.T) {
	r := New()
	h := &fakeHandler{name: "base-mainnet", platform: "evm"}
	r.Register("base-mainnet", h)

	got, ok := r.Get("base-mainnet")
	require.True(t, ok)
	require.Same(t, h, got)

	require.True(t, r.Has("base-mainnet"))
	require.False(t, r.Has("unknown-chain"))
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := New()
	r.Register("base-mainnet", &fakeHandler{name: "base-mainnet"})

	require.Panics(t, func() {
		r.Register("base-mainnet", &fakeHandler{name: "base-mainnet"})
	})
}

func TestRegister_AfterSealPanics(t *testing.T) {
	r := New()
	r.Seal()

	require.Panics(t, func() {
		r.Register("base-mainnet", &fakeHandler{name: "base-mainnet"})
	})
}

func TestList_Sorted(t *testing.T) {
	r := New()
	r.Register("starknet-mainnet", &fakeHandler{name: "starknet-mainnet"})
	r.Register("arbitrum-mainnet", &fakeHandler{name: "arbitrum-mainnet"})
	r.Register("sui-mainnet", &fakeHandler{name: "sui-mainnet"})

	require.Equal(t, []string{"arbitrum-mainnet", "starknet-mainnet", "sui-mainnet"}, r.List())
}
