// Package handler implements the Chain Handler: the per-L2 adapter that
// drives a Deposit through QUEUED -> INITIALIZED -> FINALIZED -> [AWAITING
// _WORMHOLE_VAA] -> BRIDGED, and scans for redemption completions. One
// Handler is constructed per configured chain and held by the Handler
// Registry for the life of the process.
package handler

import (
	"context"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Handler is the common interface every chain-platform adapter implements.
// The state machine transitions themselves (QUEUED->INITIALIZED etc.) live
// in Base; adapters only supply the chain-specific means of talking to
// their L2.
type Handler interface {
	ChainName() string
	Platform() string

	// Initialize submits the call that moves a QUEUED deposit to
	// INITIALIZED (the tBTC "reveal" call). Returns
	// apperrors.ChainRevertBridgeWaiting if the contract reverted for a
	// reason that isn't actually an error (the deposit is not yet
	// finalized by the bridge).
	Initialize(ctx context.Context, d *store.Deposit) error

	// Finalize submits the call that moves an INITIALIZED deposit to
	// FINALIZED (or, for Wormhole-bridging platforms, to
	// AWAITING_WORMHOLE_VAA).
	Finalize(ctx context.Context, d *store.Deposit) error

	// PastDepositCheck scans the L2 for deposit-lifecycle events the
	// relayer's store has not recorded, used for restart reconciliation
	// and to catch events missed due to downtime. Returns the tracked
	// deposits whose stored status is behind what the scan observed, as
	// they are stored: their status is not changed here, and the scheduler
	// re-saves them as they are. Advancing a lagging status is done by the
	// scheduler through CheckDepositStatus.
	PastDepositCheck(ctx context.Context, sinceBlock uint64) ([]*store.Deposit, error)

	// CheckDepositStatus polls the chain's authoritative status for a
	// single deposit id, returning nil if the chain reports nothing for
	// it. The scheduler uses this to advance a local record that has
	// fallen behind the chain's view without replaying intermediate
	// calls. Platforms that cannot cheaply query single-deposit status
	// return nil, nil.
	CheckDepositStatus(ctx context.Context, id string) (*store.DepositStatus, error)

	// SetupListeners starts any background subscriptions a platform needs
	// to catch lifecycle events the polling jobs don't observe directly
	// (for EVM, the L1 vault's OptimisticMintingFinalized event). Platforms
	// with nothing to subscribe to return nil immediately.
	SetupListeners(ctx context.Context) error

	// GetLatestBlock returns the chain's current block/slot/checkpoint
	// number, used to bound PastDepositCheck/ScanPendingRedemptions scans.
	GetLatestBlock(ctx context.Context) (uint64, error)

	// SupportsPastDepositCheck reports whether this handler's
	// configuration allows scanning past events at all (some chains are
	// configured endpoint-only, with no direct RPC/contract access).
	SupportsPastDepositCheck() bool
}

// WormholeBridger is a capability interface implemented only by handlers
// for platforms whose deposits route through Wormhole before reaching L1
// (Sui and Sei) — modeled as a distinct interface rather than a hook on the
// base handler, per the relayer's design notes: most platforms never touch
// Wormhole, so it is not part of the Handler contract every adapter must
// satisfy.
type WormholeBridger interface {
	// ProcessWormholeBridging advances a deposit from
	// AWAITING_WORMHOLE_VAA to BRIDGED once the VAA service can fetch and
	// verify its VAA, then submits it to the L1 bridge contract.
	ProcessWormholeBridging(ctx context.Context, d *store.Deposit) error
}

// RedemptionHandler is implemented by handlers for platforms where
// redemption requests originate on the L2 itself and must be scanned for,
// as opposed to L1-originated redemptions the redemption service drives
// directly.
type RedemptionHandler interface {
	ScanPendingRedemptions(ctx context.Context, sinceBlock uint64) ([]*store.Redemption, error)
}
