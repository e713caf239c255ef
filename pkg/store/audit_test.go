package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_AppendListDelete(t *testing.T) {
	if testClient == nil {
		t.Skip("RELAYER_TEST_DATABASE_URL not configured")
	}
	repo := NewAuditRepository(testClient)
	ctx := context.Background()
	entityID := uuid.New().String()

	require.NoError(t, repo.Append(ctx, AuditLog{
		EntityKind: "deposit", EntityID: entityID, ChainName: "base-mainnet",
		ToStatus: "QUEUED", Message: "deposit revealed",
	}))
	require.NoError(t, repo.Append(ctx, AuditLog{
		EntityKind: "deposit", EntityID: entityID, ChainName: "base-mainnet",
		FromStatus: "QUEUED", ToStatus: "INITIALIZED", Message: "reveal submitted",
	}))
	defer repo.DeleteForEntity(ctx, "deposit", entityID)

	logs, err := repo.ListForEntity(ctx, "deposit", entityID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "INITIALIZED", logs[0].ToStatus)
	require.Equal(t, "QUEUED", logs[0].FromStatus)
	require.Equal(t, "QUEUED", logs[1].ToStatus)

	require.NoError(t, repo.DeleteForEntity(ctx, "deposit", entityID))
	logs, err = repo.ListForEntity(ctx, "deposit", entityID)
	require.NoError(t, err)
	require.Empty(t, logs)
}
