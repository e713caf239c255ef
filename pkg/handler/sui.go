package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// l1BridgeABIJSON describes the L1 Wormhole token bridge method the relayer
// calls to complete a deposit once it has fetched and verified its VAA.
// Shared by every WormholeBridger platform (Sui, Sei): both submit the same
// completeTransferWithPayload call against the same L1 contract.
const l1BridgeABIJSON = `[
  {"type":"function","name":"completeTransferWithPayload","stateMutability":"nonpayable",
   "inputs":[{"name":"encodedVm","type":"bytes"}],"outputs":[]}
]`

var l1BridgeABI abi.ABI

func init() {
	var err error
	l1BridgeABI, err = abi.JSON(strings.NewReader(l1BridgeABIJSON))
	if err != nil {
		panic(fmt.Sprintf("handler: parse L1 bridge ABI: %v", err))
	}
}

// Sui drives the deposit lifecycle for the Move-based Sui chain. Sui
// deposits do not land on L1 directly: Finalize moves them to
// AWAITING_WORMHOLE_VAA, and ProcessWormholeBridging (the WormholeBridger
// capability) completes the trip to BRIDGED once a VAA is available.
type Sui struct {
	Base
	rpc      *jsonrpcClient
	l1Bridge *bind.BoundContract
}

// NewSui constructs a Sui adapter talking to the chain's configured
// JSON-RPC endpoint and the relayer's shared L1 bridge contract.
func NewSui(b Base, l1BridgeAddress string) *Sui {
	bridge := bind.NewBoundContract(common.HexToAddress(l1BridgeAddress), l1BridgeABI, b.ChainCtx.L1Client, b.ChainCtx.L1Client, b.ChainCtx.L1Client)
	return &Sui{Base: b, rpc: newJSONRPCClient(b.Cfg.L2RPC), l1Bridge: bridge}
}

func (h *Sui) Initialize(ctx context.Context, d *store.Deposit) error {
	params := []interface{}{
		h.Cfg.ContractAddress, "reveal_deposit",
		[]interface{}{d.Hashes.FundingTxHash, d.Hashes.FundingOutputIdx, d.Receipt.DepositorAddress},
	}

	var digest string
	if err := h.rpc.call(ctx, "sui_executeMoveCall", params, &digest); err != nil {
		return apperrors.TransientRPC("handler.sui.Initialize", h.ChainName(), err)
	}

	d.L2TxHash = digest
	return h.transition(ctx, d, store.DepositInitialized, "reveal_deposit move call executed")
}

func (h *Sui) Finalize(ctx context.Context, d *store.Deposit) error {
	params := []interface{}{h.Cfg.ContractAddress, "finalize_deposit", []interface{}{d.ID}}

	var result struct {
		Digest         string `json:"digest"`
		WormholeSeq    string `json:"wormholeSequence"`
		EmitterAddress string `json:"wormholeEmitterAddress"`
		EmitterChain   uint16 `json:"wormholeEmitterChain"`
	}
	if err := h.rpc.call(ctx, "sui_executeMoveCall", params, &result); err != nil {
		return apperrors.TransientRPC("handler.sui.Finalize", h.ChainName(), err)
	}

	d.L2TxHash = result.Digest
	d.WormholeInfo = &store.WormholeInfo{
		Sequence:       result.WormholeSeq,
		EmitterChain:   result.EmitterChain,
		EmitterAddress: result.EmitterAddress,
	}
	return h.transition(ctx, d, store.DepositAwaitingWormholeVAA, "finalize_deposit move call executed, awaiting VAA")
}

// GetLatestBlock returns Sui's current checkpoint sequence number.
func (h *Sui) GetLatestBlock(ctx context.Context) (uint64, error) {
	var checkpoint string
	if err := h.rpc.call(ctx, "sui_getLatestCheckpointSequenceNumber", []interface{}{}, &checkpoint); err != nil {
		return 0, apperrors.TransientRPC("handler.sui.GetLatestBlock", h.ChainName(), err)
	}
	n, err := strconv.ParseUint(checkpoint, 10, 64)
	if err != nil {
		return 0, apperrors.TransientRPC("handler.sui.GetLatestBlock", h.ChainName(), err)
	}
	return n, nil
}

func (h *Sui) PastDepositCheck(ctx context.Context, sinceBlock uint64) ([]*store.Deposit, error) {
	params := []interface{}{h.Cfg.ContractAddress, "DepositFinalized", sinceBlock}

	var events []struct {
		DepositKey string `json:"depositKey"`
	}
	if err := h.rpc.call(ctx, "suix_queryEvents", params, &events); err != nil {
		return nil, apperrors.TransientRPC("handler.sui.PastDepositCheck", h.ChainName(), err)
	}

	var out []*store.Deposit
	for _, e := range events {
		d, err := h.Deposits.GetByID(ctx, e.DepositKey)
		if err == store.ErrDepositNotFound {
			continue
		}
		if err != nil {
			return nil, apperrors.TransientRPC("handler.sui.PastDepositCheck", h.ChainName(), err)
		}
		if d.Status != store.DepositAwaitingWormholeVAA && d.Status != store.DepositBridged {
			out = append(out, d)
		}
	}
	return out, nil
}

// ScanPendingRedemptions matches RedemptionRequested Move events against
// PENDING redemptions recorded via the reveal API, by redeemer output
// script, filling in the Wormhole sequence the move call already emitted.
func (h *Sui) ScanPendingRedemptions(ctx context.Context, sinceBlock uint64) ([]*store.Redemption, error) {
	pending, err := h.Redemptions.GetByStatus(ctx, store.RedemptionPending)
	if err != nil {
		return nil, apperrors.TransientRPC("handler.sui.ScanPendingRedemptions", h.ChainName(), err)
	}
	byScript := map[string]*store.Redemption{}
	for _, r := range pending {
		if r.ChainName == h.ChainName() && r.L2TxHash == "" {
			byScript[r.RedeemerOutputScript] = r
		}
	}
	if len(byScript) == 0 {
		return nil, nil
	}

	params := []interface{}{h.Cfg.ContractAddress, "RedemptionRequested", sinceBlock}
	var events []struct {
		Digest               string `json:"digest"`
		RedeemerOutputScript string `json:"redeemerOutputScript"`
		WormholeSeq          string `json:"wormholeSequence"`
		EmitterAddress       string `json:"wormholeEmitterAddress"`
		EmitterChain         uint16 `json:"wormholeEmitterChain"`
	}
	if err := h.rpc.call(ctx, "suix_queryEvents", params, &events); err != nil {
		return nil, apperrors.TransientRPC("handler.sui.ScanPendingRedemptions", h.ChainName(), err)
	}

	var out []*store.Redemption
	for _, e := range events {
		r, ok := byScript[e.RedeemerOutputScript]
		if !ok {
			continue
		}
		r.L2TxHash = e.Digest
		r.WormholeInfo = &store.WormholeInfo{
			Sequence:       e.WormholeSeq,
			EmitterChain:   e.EmitterChain,
			EmitterAddress: e.EmitterAddress,
		}
		out = append(out, r)
	}
	return out, nil
}

// ProcessWormholeBridging implements handler.WormholeBridger.
func (h *Sui) ProcessWormholeBridging(ctx context.Context, d *store.Deposit) error {
	return processWormholeBridging(ctx, &h.Base, h.ChainCtx.Wormhole, h.l1Bridge, d)
}
