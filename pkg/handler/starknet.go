package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Starknet drives the deposit lifecycle for a StarkNet L2. StarkNet has no
// Wormhole bridging capability; finalized deposits land directly on L1 via
// the StarkGate-style bridge.
type Starknet struct {
	Base
	rpc *jsonrpcClient
}

// NewStarknet constructs a StarkNet adapter talking to the chain's
// configured JSON-RPC endpoint (starknet_* method namespace).
func NewStarknet(b Base) *Starknet {
	return &Starknet{Base: b, rpc: newJSONRPCClient(b.Cfg.L2RPC)}
}

type starknetInvokeParams struct {
	ContractAddress string   `json:"contract_address"`
	EntryPoint      string   `json:"entry_point_selector"`
	Calldata        []string `json:"calldata"`
}

func (h *Starknet) Initialize(ctx context.Context, d *store.Deposit) error {
	params := starknetInvokeParams{
		ContractAddress: h.Cfg.ContractAddress,
		EntryPoint:      "reveal_deposit",
		Calldata: []string{
			d.Hashes.FundingTxHash, fmt.Sprint(d.Hashes.FundingOutputIdx),
			d.Receipt.DepositorAddress, d.Receipt.BlindingFactor,
			d.Receipt.WalletPublicKeyHash, d.Receipt.RefundPublicKeyHash, d.Receipt.RefundLocktime,
		},
	}

	var result struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if err := h.rpc.call(ctx, "starknet_addInvokeTransaction", params, &result); err != nil {
		return apperrors.TransientRPC("handler.starknet.Initialize", h.ChainName(), err)
	}

	d.L2TxHash = result.TransactionHash
	return h.transition(ctx, d, store.DepositInitialized, "reveal_deposit submitted")
}

func (h *Starknet) Finalize(ctx context.Context, d *store.Deposit) error {
	params := starknetInvokeParams{
		ContractAddress: h.Cfg.ContractAddress,
		EntryPoint:      "finalize_deposit",
		Calldata:        []string{d.ID},
	}

	var result struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if err := h.rpc.call(ctx, "starknet_addInvokeTransaction", params, &result); err != nil {
		return apperrors.TransientRPC("handler.starknet.Finalize", h.ChainName(), err)
	}

	d.L2TxHash = result.TransactionHash
	return h.transition(ctx, d, store.DepositFinalized, "finalize_deposit submitted")
}

func (h *Starknet) PastDepositCheck(ctx context.Context, sinceBlock uint64) ([]*store.Deposit, error) {
	params := map[string]interface{}{
		"from_block": sinceBlock,
		"address":    h.Cfg.ContractAddress,
		"keys":       [][]string{{"DepositFinalized"}},
	}

	var events []struct {
		Data []string `json:"data"`
	}
	if err := h.rpc.call(ctx, "starknet_getEvents", params, &events); err != nil {
		return nil, apperrors.TransientRPC("handler.starknet.PastDepositCheck", h.ChainName(), err)
	}

	var out []*store.Deposit
	for _, e := range events {
		if len(e.Data) == 0 {
			continue
		}
		d, err := h.Deposits.GetByID(ctx, e.Data[0])
		if err == store.ErrDepositNotFound {
			continue
		}
		if err != nil {
			return nil, apperrors.TransientRPC("handler.starknet.PastDepositCheck", h.ChainName(), err)
		}
		if d.Status != store.DepositFinalized && d.Status != store.DepositBridged {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetLatestBlock returns StarkNet's current block number.
func (h *Starknet) GetLatestBlock(ctx context.Context) (uint64, error) {
	var result interface{}
	if err := h.rpc.call(ctx, "starknet_blockNumber", []interface{}{}, &result); err != nil {
		return 0, apperrors.TransientRPC("handler.starknet.GetLatestBlock", h.ChainName(), err)
	}
	switch v := result.(type) {
	case float64:
		return uint64(v), nil
	case string:
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return 0, apperrors.TransientRPC("handler.starknet.GetLatestBlock", h.ChainName(), err)
		}
		return n, nil
	default:
		return 0, apperrors.TransientRPC("handler.starknet.GetLatestBlock", h.ChainName(), fmt.Errorf("unexpected block number type %T", v))
	}
}

// feeEstimationStrategy picks the StarkNet fee-quoting strategy to use for
// a transaction, honoring the chain config's preference order and falling
// back to estimateFee when none of the configured strategies are recognized.
func (h *Starknet) feeEstimationStrategy() string {
	for _, s := range h.Cfg.StarknetFeeFallback {
		if s == "estimateFee" || s == "resourceBounds" {
			return s
		}
	}
	return "estimateFee"
}
