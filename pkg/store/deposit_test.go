package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testClient is shared across the package's repository tests. Nil unless
// RELAYER_TEST_DATABASE_URL points at a reachable, migrated Postgres
// instance, in which case every test below runs against real SQL.
var testClient *Client

func TestMain(m *testing.M) {
	dsn := os.Getenv("RELAYER_TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(0)
	}

	var err error
	testClient, err = NewClient(Config{DatabaseURL: dsn})
	if err != nil {
		panic("connect to test database: " + err.Error())
	}
	if err := testClient.MigrateUp(context.Background()); err != nil {
		panic("migrate test database: " + err.Error())
	}

	code := m.Run()
	testClient.Close()
	os.Exit(code)
}

func newTestDeposit() *Deposit {
	return &Deposit{
		ID:        uuid.New().String(),
		ChainName: "base-mainnet",
		Status:    DepositQueued,
		Hashes:    Hashes{FundingTxHash: "abc123", FundingOutputIdx: 0},
		Receipt:   Receipt{DepositorAddress: "0xdead"},
		Dates:     Dates{"QUEUED": time.Now().UTC()},
	}
}

func TestDepositRepository_CreateGetUpdateDelete(t *testing.T) {
	if testClient == nil {
		t.Skip("RELAYER_TEST_DATABASE_URL not configured")
	}
	repo := NewDepositRepository(testClient)
	ctx := context.Background()

	d := newTestDeposit()
	require.NoError(t, repo.Create(ctx, d))
	defer repo.Delete(ctx, d.ID)

	require.ErrorIs(t, repo.Create(ctx, d), ErrDuplicateDeposit)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, d.ChainName, got.ChainName)
	require.Equal(t, DepositQueued, got.Status)
	require.Equal(t, "abc123", got.Hashes.FundingTxHash)

	got.Status = DepositInitialized
	got.L2TxHash = "0xbeef"
	require.NoError(t, repo.Update(ctx, got))

	reread, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, DepositInitialized, reread.Status)
	require.Equal(t, "0xbeef", reread.L2TxHash)

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err = repo.GetByID(ctx, d.ID)
	require.ErrorIs(t, err, ErrDepositNotFound)
}

func TestDepositRepository_GetByStatus(t *testing.T) {
	if testClient == nil {
		t.Skip("RELAYER_TEST_DATABASE_URL not configured")
	}
	repo := NewDepositRepository(testClient)
	ctx := context.Background()

	d1 := newTestDeposit()
	d2 := newTestDeposit()
	d2.Status = DepositFinalized
	require.NoError(t, repo.Create(ctx, d1))
	require.NoError(t, repo.Create(ctx, d2))
	defer repo.Delete(ctx, d1.ID)
	defer repo.Delete(ctx, d2.ID)

	queued, err := repo.GetByStatus(ctx, DepositQueued)
	require.NoError(t, err)
	found := false
	for _, d := range queued {
		if d.ID == d1.ID {
			found = true
		}
		require.NotEqual(t, d2.ID, d.ID)
	}
	require.True(t, found)
}

func TestDepositRepository_UpdateStaleReturnsErr(t *testing.T) {
	if testClient == nil {
		t.Skip("RELAYER_TEST_DATABASE_URL not configured")
	}
	repo := NewDepositRepository(testClient)
	ctx := context.Background()

	d := newTestDeposit()
	d.ID = uuid.New().String()
	d.Status = DepositBridged
	err := repo.Update(ctx, d)
	require.ErrorIs(t, err, ErrStaleUpdate)
}
