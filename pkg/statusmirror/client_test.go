package statusmirror

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledIsNoOp(t *testing.T) {
	c, err := NewClient(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.False(t, c.IsEnabled())
	require.NoError(t, c.Close())
}

func TestNewClient_EnabledRequiresProjectID(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Enabled: true})
	require.Error(t, err)
}

func TestMirrorDeposit_NoOpWhenDisabled(t *testing.T) {
	c, err := NewClient(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	// Must not panic or attempt a network call against a nil Firestore client.
	c.MirrorDeposit(context.Background(), DepositSnapshot{
		DepositID: "1", ChainName: "base-mainnet", Status: "QUEUED", ObservedAt: time.Now(),
	})
}

func TestMirrorRedemption_NoOpWhenDisabled(t *testing.T) {
	c, err := NewClient(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	c.MirrorRedemption(context.Background(), RedemptionSnapshot{
		RedemptionID: "1", ChainName: "base-mainnet", Status: "PENDING", ObservedAt: time.Now(),
	})
}
