package handler

import (
	"context"
	"log"
	"time"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/chain"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/config"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/statusmirror"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Base holds the state every platform adapter shares: its chain context,
// its slice of the operation store, and the shared status-transition
// bookkeeping (Dates map, audit log). Platform adapters embed Base and
// implement only the chain-specific RPC calls.
type Base struct {
	ChainCtx *chain.Context
	Cfg      *config.ChainConfig

	Deposits    *store.DepositRepository
	Redemptions *store.RedemptionRepository
	Audit       *store.AuditRepository

	// Mirror is optional: nil, or a disabled client, makes every mirror
	// call a no-op.
	Mirror *statusmirror.Client

	Logger *log.Logger
}

// NewBase constructs the shared adapter state, with a logger prefixed the
// way the rest of this lineage's components prefix theirs.
func NewBase(chainCtx *chain.Context, cfg *config.ChainConfig, deposits *store.DepositRepository, redemptions *store.RedemptionRepository, audit *store.AuditRepository, mirror *statusmirror.Client) Base {
	return Base{
		ChainCtx:    chainCtx,
		Cfg:         cfg,
		Deposits:    deposits,
		Redemptions: redemptions,
		Audit:       audit,
		Mirror:      mirror,
		Logger:      log.New(log.Writer(), "["+cfg.ChainName+"] ", log.LstdFlags),
	}
}

func (b *Base) ChainName() string { return b.Cfg.ChainName }
func (b *Base) Platform() string  { return string(b.Cfg.Platform) }

// transition moves a deposit to a new status, stamping Dates and appending
// an audit log entry, then persists it. Callers must have just re-read d
// from the store (re-read-before-mutate) so this write does not clobber a
// concurrent change.
func (b *Base) transition(ctx context.Context, d *store.Deposit, to store.DepositStatus, message string) error {
	from := d.Status
	d.Status = to
	if d.Dates == nil {
		d.Dates = store.Dates{}
	}
	now := time.Now()
	d.Dates[string(to)] = now
	d.LastActivityAt = now

	if err := b.Deposits.Update(ctx, d); err != nil {
		return apperrors.TransientRPC("handler.transition", b.ChainName(), err)
	}
	if b.Audit != nil {
		_ = b.Audit.Append(ctx, store.AuditLog{
			EntityKind: "deposit",
			EntityID:   d.ID,
			ChainName:  b.ChainName(),
			FromStatus: string(from),
			ToStatus:   string(to),
			Message:    message,
		})
	}
	if b.Mirror != nil {
		b.Mirror.MirrorDeposit(ctx, statusmirror.DepositSnapshot{
			DepositID: d.ID, ChainName: b.ChainName(), Status: string(to),
			L1TxHash: d.L1TxHash, L2TxHash: d.L2TxHash, Error: d.Error, ObservedAt: time.Now(),
		})
	}
	return nil
}

// transitionRedemption mirrors transition for redemption records, also
// appending a "<stage> at <timestamp>" entry to the redemption's own log.
func (b *Base) transitionRedemption(ctx context.Context, r *store.Redemption, to store.RedemptionStatus, message string) error {
	from := r.Status
	r.Status = to
	now := time.Now()
	r.LastActivityAt = now
	r.Logs = append(r.Logs, string(to)+" at "+now.UTC().Format(time.RFC3339))

	if err := b.Redemptions.Update(ctx, r); err != nil {
		return apperrors.TransientRPC("handler.transitionRedemption", b.ChainName(), err)
	}
	if b.Audit != nil {
		_ = b.Audit.Append(ctx, store.AuditLog{
			EntityKind: "redemption",
			EntityID:   r.ID,
			ChainName:  b.ChainName(),
			FromStatus: string(from),
			ToStatus:   string(to),
			Message:    message,
		})
	}
	if b.Mirror != nil {
		b.Mirror.MirrorRedemption(ctx, statusmirror.RedemptionSnapshot{
			RedemptionID: r.ID, ChainName: b.ChainName(), Status: string(to),
			L1TxHash: r.L1TxHash, L2TxHash: r.L2TxHash, Error: r.Error, ObservedAt: time.Now(),
		})
	}
	return nil
}

// bumpActivity records that a deposit was touched (e.g. a bridge-waiting
// revert was observed) without changing its status, so retry-interval
// gating can tell a deposit stuck waiting on the bridge from one nobody has
// looked at recently.
func (b *Base) bumpActivity(ctx context.Context, d *store.Deposit) error {
	d.LastActivityAt = time.Now()
	if err := b.Deposits.Update(ctx, d); err != nil {
		return apperrors.TransientRPC("handler.bumpActivity", b.ChainName(), err)
	}
	return nil
}

// CheckDepositStatus defaults to reporting nothing: platforms without a
// cheap single-deposit status query override this.
func (b *Base) CheckDepositStatus(ctx context.Context, id string) (*store.DepositStatus, error) {
	return nil, nil
}

// SetupListeners defaults to a no-op: most platforms have no background
// subscription to start.
func (b *Base) SetupListeners(ctx context.Context) error {
	return nil
}

// SupportsPastDepositCheck defaults to true only when the chain is
// configured with direct RPC/contract access rather than routed through an
// endpoint-only integration.
func (b *Base) SupportsPastDepositCheck() bool {
	return b.Cfg.L2RPC != "" && b.Cfg.ContractAddress != "" && !b.Cfg.UseEndpoint
}
