package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DepositRepository provides CRUD access to the deposits table.
type DepositRepository struct {
	client *Client
}

// NewDepositRepository wraps a Client for deposit access.
func NewDepositRepository(c *Client) *DepositRepository { return &DepositRepository{client: c} }

// Create inserts a new deposit with the status it carries. Returns ErrDuplicateDeposit
// if the id already exists.
func (r *DepositRepository) Create(ctx context.Context, d *Deposit) error {
	hashes, err := json.Marshal(d.Hashes)
	if err != nil {
		return fmt.Errorf("store: marshal hashes: %w", err)
	}
	receipt, err := json.Marshal(d.Receipt)
	if err != nil {
		return fmt.Errorf("store: marshal receipt: %w", err)
	}
	dates, err := json.Marshal(d.Dates)
	if err != nil {
		return fmt.Errorf("store: marshal dates: %w", err)
	}
	var l1OutputEvent []byte
	if d.L1OutputEvent != nil {
		l1OutputEvent, err = json.Marshal(d.L1OutputEvent)
		if err != nil {
			return fmt.Errorf("store: marshal l1 output event: %w", err)
		}
	}

	const q = `
		INSERT INTO deposits (id, chain_name, status, owner, hashes, receipt, l1_output_event, dates, l1_tx_hash, l2_tx_hash, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	res, err := r.client.DB().ExecContext(ctx, q, d.ID, d.ChainName, d.Status, nullString(d.Owner),
		hashes, receipt, l1OutputEvent, dates, nullString(d.L1TxHash), nullString(d.L2TxHash), lastActivity(d.LastActivityAt))
	if err != nil {
		return fmt.Errorf("store: insert deposit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: insert deposit rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateDeposit
	}
	return nil
}

func scanDeposit(scan func(dest ...interface{}) error) (*Deposit, error) {
	var d Deposit
	var hashes, receipt, dates, wormholeInfo, l1OutputEvent []byte
	var owner, l1, l2, errMsg sql.NullString
	var lastActivityAt sql.NullTime

	if err := scan(&d.ID, &d.ChainName, &d.Status, &owner, &hashes, &receipt, &l1OutputEvent, &dates,
		&wormholeInfo, &l1, &l2, &errMsg, &lastActivityAt, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}

	if err := scanJSON(hashes, &d.Hashes); err != nil {
		return nil, fmt.Errorf("store: unmarshal hashes: %w", err)
	}
	if err := scanJSON(receipt, &d.Receipt); err != nil {
		return nil, fmt.Errorf("store: unmarshal receipt: %w", err)
	}
	if err := scanJSON(dates, &d.Dates); err != nil {
		return nil, fmt.Errorf("store: unmarshal dates: %w", err)
	}
	if len(wormholeInfo) > 0 {
		var wi WormholeInfo
		if err := scanJSON(wormholeInfo, &wi); err != nil {
			return nil, fmt.Errorf("store: unmarshal wormhole info: %w", err)
		}
		d.WormholeInfo = &wi
	}
	if len(l1OutputEvent) > 0 {
		var ev L1OutputEvent
		if err := scanJSON(l1OutputEvent, &ev); err != nil {
			return nil, fmt.Errorf("store: unmarshal l1 output event: %w", err)
		}
		d.L1OutputEvent = &ev
	}
	d.Owner = owner.String
	d.L1TxHash = l1.String
	d.L2TxHash = l2.String
	d.Error = errMsg.String
	if lastActivityAt.Valid {
		d.LastActivityAt = lastActivityAt.Time
	}
	return &d, nil
}

const depositColumns = `id, chain_name, status, owner, hashes, receipt, l1_output_event, dates, wormhole_info, l1_tx_hash, l2_tx_hash, error, last_activity_at, created_at, updated_at`

// GetByID returns a single deposit by its canonical decimal-string id.
// Returns ErrDepositNotFound if no row matches.
func (r *DepositRepository) GetByID(ctx context.Context, id string) (*Deposit, error) {
	row := r.client.DB().QueryRowContext(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1`, id)
	d, err := scanDeposit(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrDepositNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get deposit: %w", err)
	}
	return d, nil
}

// GetByStatus returns all deposits currently in the given status, across
// all chains, newest-first so status listings and operations endpoints
// surface the most recently touched records first.
func (r *DepositRepository) GetByStatus(ctx context.Context, status DepositStatus) ([]*Deposit, error) {
	rows, err := r.client.DB().QueryContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("store: get deposits by status: %w", err)
	}
	defer rows.Close()

	var out []*Deposit
	for rows.Next() {
		d, err := scanDeposit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan deposit: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetAllByChain returns every deposit recorded for a given chain name.
func (r *DepositRepository) GetAllByChain(ctx context.Context, chainName string) ([]*Deposit, error) {
	rows, err := r.client.DB().QueryContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE chain_name = $1 ORDER BY created_at ASC`, chainName)
	if err != nil {
		return nil, fmt.Errorf("store: get deposits by chain: %w", err)
	}
	defer rows.Close()

	var out []*Deposit
	for rows.Next() {
		d, err := scanDeposit(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan deposit: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update persists the full record. Callers must have read the current row
// immediately before mutating it (re-read-before-mutate discipline) so the
// write reflects the latest dates/wormhole_info rather than a stale copy.
func (r *DepositRepository) Update(ctx context.Context, d *Deposit) error {
	hashes, err := json.Marshal(d.Hashes)
	if err != nil {
		return fmt.Errorf("store: marshal hashes: %w", err)
	}
	receipt, err := json.Marshal(d.Receipt)
	if err != nil {
		return fmt.Errorf("store: marshal receipt: %w", err)
	}
	dates, err := json.Marshal(d.Dates)
	if err != nil {
		return fmt.Errorf("store: marshal dates: %w", err)
	}
	var wormholeInfo []byte
	if d.WormholeInfo != nil {
		wormholeInfo, err = json.Marshal(d.WormholeInfo)
		if err != nil {
			return fmt.Errorf("store: marshal wormhole info: %w", err)
		}
	}
	var l1OutputEvent []byte
	if d.L1OutputEvent != nil {
		l1OutputEvent, err = json.Marshal(d.L1OutputEvent)
		if err != nil {
			return fmt.Errorf("store: marshal l1 output event: %w", err)
		}
	}

	const q = `
		UPDATE deposits SET
			status = $2, owner = $3, hashes = $4, receipt = $5, l1_output_event = $6, dates = $7, wormhole_info = $8,
			l1_tx_hash = $9, l2_tx_hash = $10, error = $11, last_activity_at = $12, updated_at = now()
		WHERE id = $1`

	res, err := r.client.DB().ExecContext(ctx, q, d.ID, d.Status, nullString(d.Owner), hashes, receipt, l1OutputEvent, dates,
		wormholeInfo, nullString(d.L1TxHash), nullString(d.L2TxHash), nullString(d.Error), lastActivity(d.LastActivityAt))
	if err != nil {
		return fmt.Errorf("store: update deposit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update deposit rows affected: %w", err)
	}
	if n == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// Delete removes a deposit record. Used only by the cleanup policy.
func (r *DepositRepository) Delete(ctx context.Context, id string) error {
	res, err := r.client.DB().ExecContext(ctx, `DELETE FROM deposits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete deposit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete deposit rows affected: %w", err)
	}
	if n == 0 {
		return ErrDepositNotFound
	}
	return nil
}

func lastActivity(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
