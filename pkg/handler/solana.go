package handler

import (
	"context"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Solana drives the deposit lifecycle for the Solana program that mirrors
// the tBTC bridge. Like StarkNet, Solana deposits settle on L1 directly
// and do not route through Wormhole in this relayer.
type Solana struct {
	Base
	rpc *jsonrpcClient
}

// NewSolana constructs a Solana adapter talking to the chain's configured
// JSON-RPC endpoint.
func NewSolana(b Base) *Solana {
	return &Solana{Base: b, rpc: newJSONRPCClient(b.Cfg.L2RPC)}
}

func (h *Solana) Initialize(ctx context.Context, d *store.Deposit) error {
	params := []interface{}{
		d.Receipt.DepositorAddress,
		map[string]interface{}{
			"fundingTxHash":    d.Hashes.FundingTxHash,
			"fundingOutputIdx": d.Hashes.FundingOutputIdx,
			"blindingFactor":   d.Receipt.BlindingFactor,
			"walletPubKeyHash": d.Receipt.WalletPublicKeyHash,
			"refundPubKeyHash": d.Receipt.RefundPublicKeyHash,
			"refundLocktime":   d.Receipt.RefundLocktime,
			"program":          h.Cfg.ContractAddress,
		},
	}

	var signature string
	if err := h.rpc.call(ctx, "sendRevealDepositInstruction", params, &signature); err != nil {
		return apperrors.TransientRPC("handler.solana.Initialize", h.ChainName(), err)
	}

	d.L2TxHash = signature
	return h.transition(ctx, d, store.DepositInitialized, "revealDeposit instruction sent")
}

func (h *Solana) Finalize(ctx context.Context, d *store.Deposit) error {
	params := []interface{}{d.ID, h.Cfg.ContractAddress}

	var signature string
	if err := h.rpc.call(ctx, "sendFinalizeDepositInstruction", params, &signature); err != nil {
		return apperrors.TransientRPC("handler.solana.Finalize", h.ChainName(), err)
	}

	d.L2TxHash = signature
	return h.transition(ctx, d, store.DepositFinalized, "finalizeDeposit instruction sent")
}

// GetLatestBlock returns Solana's current slot height.
func (h *Solana) GetLatestBlock(ctx context.Context) (uint64, error) {
	var slot uint64
	if err := h.rpc.call(ctx, "getSlot", []interface{}{}, &slot); err != nil {
		return 0, apperrors.TransientRPC("handler.solana.GetLatestBlock", h.ChainName(), err)
	}
	return slot, nil
}

func (h *Solana) PastDepositCheck(ctx context.Context, sinceBlock uint64) ([]*store.Deposit, error) {
	params := []interface{}{h.Cfg.ContractAddress, map[string]interface{}{"limit": 1000}}

	var sigs []struct {
		Signature string `json:"signature"`
		Memo      string `json:"memo"` // carries the depositKey for this relayer's program
	}
	if err := h.rpc.call(ctx, "getSignaturesForAddress", params, &sigs); err != nil {
		return nil, apperrors.TransientRPC("handler.solana.PastDepositCheck", h.ChainName(), err)
	}

	var out []*store.Deposit
	for _, sig := range sigs {
		if sig.Memo == "" {
			continue
		}
		d, err := h.Deposits.GetByID(ctx, sig.Memo)
		if err == store.ErrDepositNotFound {
			continue
		}
		if err != nil {
			return nil, apperrors.TransientRPC("handler.solana.PastDepositCheck", h.ChainName(), err)
		}
		if d.Status != store.DepositFinalized && d.Status != store.DepositBridged {
			out = append(out, d)
		}
	}
	return out, nil
}
