package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// RedemptionRepository provides CRUD access to the redemptions table.
type RedemptionRepository struct {
	client *Client
}

// NewRedemptionRepository wraps a Client for redemption access.
func NewRedemptionRepository(c *Client) *RedemptionRepository {
	return &RedemptionRepository{client: c}
}

const redemptionColumns = `id, chain_name, status, requester_address, amount, redeemer_output_script, wallet_pubkey_hash, main_utxo, wormhole_info, l2_tx_hash, l1_tx_hash, error, logs, dates, last_activity_at, created_at, updated_at`

// Create inserts a new redemption with the status it carries.
func (r *RedemptionRepository) Create(ctx context.Context, red *Redemption) error {
	logs, err := json.Marshal(red.Logs)
	if err != nil {
		return fmt.Errorf("store: marshal logs: %w", err)
	}
	dates, err := json.Marshal(red.Dates)
	if err != nil {
		return fmt.Errorf("store: marshal dates: %w", err)
	}
	var mainUtxo []byte
	if red.MainUtxo != nil {
		mainUtxo, err = json.Marshal(red.MainUtxo)
		if err != nil {
			return fmt.Errorf("store: marshal main utxo: %w", err)
		}
	}

	const q = `
		INSERT INTO redemptions (id, chain_name, status, requester_address, amount, redeemer_output_script, wallet_pubkey_hash, main_utxo, l2_tx_hash, logs, dates, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`

	res, err := r.client.DB().ExecContext(ctx, q, red.ID, red.ChainName, red.Status,
		red.RequesterAddress, red.Amount, red.RedeemerOutputScript, nullString(red.WalletPubKeyHash),
		mainUtxo, nullString(red.L2TxHash), logs, dates, lastActivity(red.LastActivityAt))
	if err != nil {
		return fmt.Errorf("store: insert redemption: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: insert redemption rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateRedemption
	}
	return nil
}

func scanRedemption(scan func(dest ...interface{}) error) (*Redemption, error) {
	var red Redemption
	var wormholeInfo, mainUtxo, logs, dates []byte
	var walletPubKeyHash, l2, l1, errMsg sql.NullString
	var lastActivityAt sql.NullTime

	if err := scan(&red.ID, &red.ChainName, &red.Status, &red.RequesterAddress, &red.Amount,
		&red.RedeemerOutputScript, &walletPubKeyHash, &mainUtxo, &wormholeInfo, &l2, &l1, &errMsg,
		&logs, &dates, &lastActivityAt, &red.CreatedAt, &red.UpdatedAt); err != nil {
		return nil, err
	}
	if len(wormholeInfo) > 0 {
		var wi WormholeInfo
		if err := scanJSON(wormholeInfo, &wi); err != nil {
			return nil, fmt.Errorf("store: unmarshal wormhole info: %w", err)
		}
		red.WormholeInfo = &wi
	}
	if len(mainUtxo) > 0 {
		var mu MainUtxo
		if err := scanJSON(mainUtxo, &mu); err != nil {
			return nil, fmt.Errorf("store: unmarshal main utxo: %w", err)
		}
		red.MainUtxo = &mu
	}
	if err := scanJSON(logs, &red.Logs); err != nil {
		return nil, fmt.Errorf("store: unmarshal logs: %w", err)
	}
	if err := scanJSON(dates, &red.Dates); err != nil {
		return nil, fmt.Errorf("store: unmarshal dates: %w", err)
	}
	red.WalletPubKeyHash = walletPubKeyHash.String
	red.L2TxHash = l2.String
	red.L1TxHash = l1.String
	red.Error = errMsg.String
	if lastActivityAt.Valid {
		red.LastActivityAt = lastActivityAt.Time
	}
	return &red, nil
}

// GetByID returns a redemption by id. Returns ErrRedemptionNotFound if no
// row matches.
func (r *RedemptionRepository) GetByID(ctx context.Context, id string) (*Redemption, error) {
	row := r.client.DB().QueryRowContext(ctx, `SELECT `+redemptionColumns+` FROM redemptions WHERE id = $1`, id)
	red, err := scanRedemption(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrRedemptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get redemption: %w", err)
	}
	return red, nil
}

// GetByStatus returns all redemptions in the given status across all
// chains, newest-first so status listings and operations endpoints surface
// the most recently touched records first.
func (r *RedemptionRepository) GetByStatus(ctx context.Context, status RedemptionStatus) ([]*Redemption, error) {
	rows, err := r.client.DB().QueryContext(ctx,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("store: get redemptions by status: %w", err)
	}
	defer rows.Close()

	var out []*Redemption
	for rows.Next() {
		red, err := scanRedemption(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan redemption: %w", err)
		}
		out = append(out, red)
	}
	return out, rows.Err()
}

// GetAllByChain returns every redemption recorded for a given chain name.
func (r *RedemptionRepository) GetAllByChain(ctx context.Context, chainName string) ([]*Redemption, error) {
	rows, err := r.client.DB().QueryContext(ctx,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE chain_name = $1 ORDER BY created_at ASC`, chainName)
	if err != nil {
		return nil, fmt.Errorf("store: get redemptions by chain: %w", err)
	}
	defer rows.Close()

	var out []*Redemption
	for rows.Next() {
		red, err := scanRedemption(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan redemption: %w", err)
		}
		out = append(out, red)
	}
	return out, rows.Err()
}

// Update persists the full record.
func (r *RedemptionRepository) Update(ctx context.Context, red *Redemption) error {
	var wormholeInfo []byte
	var err error
	if red.WormholeInfo != nil {
		wormholeInfo, err = json.Marshal(red.WormholeInfo)
		if err != nil {
			return fmt.Errorf("store: marshal wormhole info: %w", err)
		}
	}
	var mainUtxo []byte
	if red.MainUtxo != nil {
		mainUtxo, err = json.Marshal(red.MainUtxo)
		if err != nil {
			return fmt.Errorf("store: marshal main utxo: %w", err)
		}
	}
	logs, err := json.Marshal(red.Logs)
	if err != nil {
		return fmt.Errorf("store: marshal logs: %w", err)
	}
	dates, err := json.Marshal(red.Dates)
	if err != nil {
		return fmt.Errorf("store: marshal dates: %w", err)
	}

	const q = `
		UPDATE redemptions SET
			status = $2, wallet_pubkey_hash = $3, main_utxo = $4, wormhole_info = $5, l2_tx_hash = $6,
			l1_tx_hash = $7, error = $8, logs = $9, dates = $10, last_activity_at = $11, updated_at = now()
		WHERE id = $1`

	res, err := r.client.DB().ExecContext(ctx, q, red.ID, red.Status, nullString(red.WalletPubKeyHash), mainUtxo,
		wormholeInfo, nullString(red.L2TxHash), nullString(red.L1TxHash), nullString(red.Error),
		logs, dates, lastActivity(red.LastActivityAt))
	if err != nil {
		return fmt.Errorf("store: update redemption: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update redemption rows affected: %w", err)
	}
	if n == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// Delete removes a redemption record. Used only by the cleanup policy.
func (r *RedemptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.client.DB().ExecContext(ctx, `DELETE FROM redemptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete redemption: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete redemption rows affected: %w", err)
	}
	if n == 0 {
		return ErrRedemptionNotFound
	}
	return nil
}
