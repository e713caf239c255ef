// Package store is the Operation Store: durable Postgres-backed persistence
// for Deposit and Redemption records and their append-only audit log.
package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// DepositStatus is the lifecycle status of a Deposit record.
type DepositStatus string

const (
	DepositQueued                DepositStatus = "QUEUED"
	DepositInitialized           DepositStatus = "INITIALIZED"
	DepositFinalized             DepositStatus = "FINALIZED"
	DepositAwaitingWormholeVAA   DepositStatus = "AWAITING_WORMHOLE_VAA"
	DepositBridged               DepositStatus = "BRIDGED"
)

// RedemptionStatus is the lifecycle status of a Redemption record.
type RedemptionStatus string

const (
	RedemptionPending    RedemptionStatus = "PENDING"
	RedemptionVAAFetched RedemptionStatus = "VAA_FETCHED"
	RedemptionCompleted  RedemptionStatus = "COMPLETED"
	RedemptionVAAFailed  RedemptionStatus = "VAA_FAILED"
	RedemptionFailed     RedemptionStatus = "FAILED"
)

// Hashes holds the funding-transaction-derived identifiers of a deposit and
// the L1 transaction hashes of its lifecycle calls.
type Hashes struct {
	FundingTxHash  string `json:"fundingTxHash"`
	FundingOutputIdx uint32 `json:"fundingOutputIndex"`
	DepositKey     string `json:"depositKey,omitempty"`
	InitializeTxHash string `json:"initializeTxHash,omitempty"`
	FinalizeTxHash string `json:"finalizeTxHash,omitempty"`
}

// Dates records the wall-clock time of every status transition a deposit
// has gone through, keyed by status name.
type Dates map[string]time.Time

// Receipt holds the depositor-supplied reveal parameters needed to
// reconstruct the on-chain reveal call.
type Receipt struct {
	DepositorAddress string `json:"depositorAddress"`
	BlindingFactor   string `json:"blindingFactor"`
	WalletPublicKeyHash string `json:"walletPublicKeyHash"`
	RefundPublicKeyHash string `json:"refundPublicKeyHash"`
	RefundLocktime   string `json:"refundLocktime"`
	ExtraData        string `json:"extraData,omitempty"`
	Vault            string `json:"vault,omitempty"`
}

// WormholeInfo tracks the Wormhole VAA lifecycle for a bridged deposit.
type WormholeInfo struct {
	Sequence      string `json:"sequence,omitempty"`
	EmitterChain  uint16 `json:"emitterChain,omitempty"`
	EmitterAddress string `json:"emitterAddress,omitempty"`
	VAABytes      string `json:"vaaBytes,omitempty"` // hex
	FetchAttempts int    `json:"fetchAttempts"`
}

// L1OutputEvent holds the raw Bitcoin funding-transaction components as
// revealed by the depositor, hex-encoded exactly as submitted. It is the
// input btctx.AssembleRaw/btctx.Parse need to recompute the canonical
// deposit id and is required to invoke the L1 initialize call.
type L1OutputEvent struct {
	Version      string `json:"version"`
	InputVector  string `json:"inputVector"`
	OutputVector string `json:"outputVector"`
	Locktime     string `json:"locktime"`
}

// Deposit is the relayer's record of a single tBTC deposit moving through
// QUEUED -> INITIALIZED -> FINALIZED -> [AWAITING_WORMHOLE_VAA] -> BRIDGED.
type Deposit struct {
	ID          string        `json:"id"` // decimal string, canonical form
	ChainName   string        `json:"chainName"`
	Status      DepositStatus `json:"status"`
	Owner       string        `json:"owner,omitempty"` // l2DepositOwner
	Hashes      Hashes        `json:"hashes"`
	Receipt     Receipt       `json:"receipt"`
	L1OutputEvent *L1OutputEvent `json:"l1OutputEvent,omitempty"`
	Dates       Dates         `json:"dates"`
	WormholeInfo *WormholeInfo `json:"wormholeInfo,omitempty"`
	L1TxHash    string        `json:"l1TxHash,omitempty"`
	L2TxHash    string        `json:"l2TxHash,omitempty"`
	Error       string        `json:"error,omitempty"`
	LastActivityAt time.Time  `json:"lastActivityAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// MainUtxo identifies the wallet's main UTXO a redemption sweeps against.
type MainUtxo struct {
	TxHash        string `json:"txHash"`
	TxOutputIndex uint32 `json:"txOutputIndex"`
	TxOutputValue string `json:"txOutputValue"`
}

// RedemptionDates records the wall-clock time of the notable milestones in
// a redemption's lifecycle.
type RedemptionDates struct {
	VAAFetchedAt  *time.Time `json:"vaaFetchedAt,omitempty"`
	L1SubmittedAt *time.Time `json:"l1SubmittedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Redemption is the relayer's record of a single redemption request moving
// through PENDING -> VAA_FETCHED -> COMPLETED (or one of the failure
// terminal states).
type Redemption struct {
	ID            string           `json:"id"`
	ChainName     string           `json:"chainName"`
	Status        RedemptionStatus `json:"status"`
	RequesterAddress string       `json:"requesterAddress"`
	Amount        string           `json:"amount"`
	RedeemerOutputScript string    `json:"redeemerOutputScript"`
	WalletPubKeyHash string        `json:"walletPubKeyHash,omitempty"`
	MainUtxo      *MainUtxo        `json:"mainUtxo,omitempty"`
	WormholeInfo  *WormholeInfo    `json:"wormholeInfo,omitempty"`
	L2TxHash      string           `json:"l2TxHash,omitempty"`
	L1TxHash      string           `json:"l1TxHash,omitempty"`
	Error         string           `json:"error,omitempty"`
	Logs          []string         `json:"logs,omitempty"`
	Dates         RedemptionDates  `json:"dates"`
	LastActivityAt time.Time       `json:"lastActivityAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// AuditLog is one append-only entry recording a status transition or
// notable event against a deposit or redemption.
type AuditLog struct {
	ID         int64     `json:"id"`
	EntityKind string    `json:"entityKind"` // "deposit" | "redemption"
	EntityID   string    `json:"entityId"`
	ChainName  string    `json:"chainName"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func scanJSON(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
