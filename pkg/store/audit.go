package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AuditRepository appends to and reads the audit_logs table. Entries are
// never updated or deleted; cleanup only ever removes entries for an
// entity whose parent deposit/redemption has itself been removed.
type AuditRepository struct {
	client *Client
}

// NewAuditRepository wraps a Client for audit log access.
func NewAuditRepository(c *Client) *AuditRepository { return &AuditRepository{client: c} }

// Append records a status transition or notable event.
func (r *AuditRepository) Append(ctx context.Context, entry AuditLog) error {
	const q = `
		INSERT INTO audit_logs (entity_kind, entity_id, chain_name, from_status, to_status, message)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.client.DB().ExecContext(ctx, q, entry.EntityKind, entry.EntityID, entry.ChainName,
		nullString(entry.FromStatus), entry.ToStatus, nullString(entry.Message))
	if err != nil {
		return fmt.Errorf("store: append audit log: %w", err)
	}
	return nil
}

// ListForEntity returns every audit log entry for a given deposit or
// redemption, most recent first.
func (r *AuditRepository) ListForEntity(ctx context.Context, entityKind, entityID string) ([]*AuditLog, error) {
	rows, err := r.client.DB().QueryContext(ctx, `
		SELECT id, entity_kind, entity_id, chain_name, from_status, to_status, message, created_at
		FROM audit_logs WHERE entity_kind = $1 AND entity_id = $2 ORDER BY created_at DESC, id DESC`,
		entityKind, entityID)
	if err != nil {
		return nil, fmt.Errorf("store: list audit logs: %w", err)
	}
	defer rows.Close()

	var out []*AuditLog
	for rows.Next() {
		var a AuditLog
		var from, msg sql.NullString
		if err := rows.Scan(&a.ID, &a.EntityKind, &a.EntityID, &a.ChainName, &from, &a.ToStatus, &msg, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan audit log: %w", err)
		}
		a.FromStatus = from.String
		a.Message = msg.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

// DeleteForEntity removes every audit log entry for an entity, used by the
// cleanup policy alongside deleting the deposit/redemption itself.
func (r *AuditRepository) DeleteForEntity(ctx context.Context, entityKind, entityID string) error {
	_, err := r.client.DB().ExecContext(ctx,
		`DELETE FROM audit_logs WHERE entity_kind = $1 AND entity_id = $2`, entityKind, entityID)
	if err != nil {
		return fmt.Errorf("store: delete audit logs: %w", err)
	}
	return nil
}
