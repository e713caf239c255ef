package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRedemption() *Redemption {
	return &Redemption{
		ID:                   uuid.New().String(),
		ChainName:            "sui-mainnet",
		Status:               RedemptionPending,
		RequesterAddress:     "0xcafe",
		Amount:               "100000",
		RedeemerOutputScript: "76a914abc123",
	}
}

func TestRedemptionRepository_CreateGetUpdateDelete(t *testing.T) {
	if testClient == nil {
		t.Skip("RELAYER_TEST_DATABASE_URL not configured")
	}
	repo := NewRedemptionRepository(testClient)
	ctx := context.Background()

	r := newTestRedemption()
	require.NoError(t, repo.Create(ctx, r))
	defer repo.Delete(ctx, r.ID)

	require.ErrorIs(t, repo.Create(ctx, r), ErrDuplicateRedemption)

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, RedemptionPending, got.Status)
	require.Equal(t, r.RedeemerOutputScript, got.RedeemerOutputScript)

	got.Status = RedemptionVAAFetched
	got.WormholeInfo = &WormholeInfo{Sequence: "42", EmitterChain: 21}
	require.NoError(t, repo.Update(ctx, got))

	reread, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, RedemptionVAAFetched, reread.Status)
	require.NotNil(t, reread.WormholeInfo)
	require.Equal(t, "42", reread.WormholeInfo.Sequence)

	require.NoError(t, repo.Delete(ctx, r.ID))
	_, err = repo.GetByID(ctx, r.ID)
	require.ErrorIs(t, err, ErrRedemptionNotFound)
}

func TestRedemptionRepository_GetByStatus(t *testing.T) {
	if testClient == nil {
		t.Skip("RELAYER_TEST_DATABASE_URL not configured")
	}
	repo := NewRedemptionRepository(testClient)
	ctx := context.Background()

	r1 := newTestRedemption()
	r2 := newTestRedemption()
	r2.Status = RedemptionCompleted
	require.NoError(t, repo.Create(ctx, r1))
	require.NoError(t, repo.Create(ctx, r2))
	defer repo.Delete(ctx, r1.ID)
	defer repo.Delete(ctx, r2.ID)

	pending, err := repo.GetByStatus(ctx, RedemptionPending)
	require.NoError(t, err)
	found := false
	for _, r := range pending {
		if r.ID == r1.ID {
			found = true
		}
	}
	require.True(t, found)
}
