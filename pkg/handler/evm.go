package handler

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// bridgeABIJSON describes the subset of the tBTC L2 bridge contract's ABI
// the relayer drives directly for redemption scanning and the past-deposit
// scan: matching RedemptionRequested events, and DepositFinalized events for
// deposits already in the store. Finalized deposits with no local record are
// skipped, not created.
const bridgeABIJSON = `[
  {"type":"function","name":"finalizeDeposit","stateMutability":"nonpayable",
   "inputs":[{"name":"depositKey","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"DepositFinalized","anonymous":false,
   "inputs":[{"name":"depositKey","type":"uint256","indexed":true}]},
  {"type":"event","name":"RedemptionRequested","anonymous":false,
   "inputs":[
     {"name":"redemptionKey","type":"uint256","indexed":true},
     {"name":"redeemerOutputScript","type":"bytes","indexed":false},
     {"name":"amount","type":"uint256","indexed":false}
   ]}
]`

var bridgeABI abi.ABI

func init() {
	var err error
	bridgeABI, err = abi.JSON(strings.NewReader(bridgeABIJSON))
	if err != nil {
		panic(fmt.Sprintf("handler: parse bridge ABI: %v", err))
	}
}

// l1DepositorABIJSON describes the L1 BitcoinDepositor contract that holds
// initialize/finalize authority for a deposit: the L2 bridge only ever
// observes a deposit's funding transaction, it is the L1 contract that
// decides when a deposit is revealed and finalized.
const l1DepositorABIJSON = `[
  {"type":"function","name":"initializeDeposit","stateMutability":"nonpayable",
   "inputs":[
     {"name":"fundingTx","type":"tuple","components":[
       {"name":"version","type":"bytes4"},
       {"name":"inputVector","type":"bytes"},
       {"name":"outputVector","type":"bytes"},
       {"name":"locktime","type":"bytes4"}
     ]},
     {"name":"reveal","type":"tuple","components":[
       {"name":"fundingOutputIndex","type":"uint32"},
       {"name":"blindingFactor","type":"bytes8"},
       {"name":"walletPubKeyHash","type":"bytes20"},
       {"name":"refundPubKeyHash","type":"bytes20"},
       {"name":"refundLocktime","type":"bytes4"},
       {"name":"vault","type":"address"}
     ]},
     {"name":"l2DepositOwner","type":"address"}
   ],"outputs":[]},
  {"type":"function","name":"finalizeDeposit","stateMutability":"payable",
   "inputs":[{"name":"depositKey","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"quoteFinalizeDeposit","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"deposits","stateMutability":"view",
   "inputs":[{"name":"depositKey","type":"uint256"}],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"event","name":"DepositInitialized","anonymous":false,
   "inputs":[{"name":"depositKey","type":"uint256","indexed":true}]},
  {"type":"event","name":"DepositFinalized","anonymous":false,
   "inputs":[{"name":"depositKey","type":"uint256","indexed":true}]},
  {"type":"event","name":"OptimisticMintingFinalized","anonymous":false,
   "inputs":[
     {"name":"minter","type":"address","indexed":false},
     {"name":"depositKey","type":"uint256","indexed":true},
     {"name":"depositor","type":"address","indexed":false},
     {"name":"debt","type":"uint256","indexed":false}
   ]},
  {"type":"event","name":"TokensTransferredWithPayload","anonymous":false,
   "inputs":[
     {"name":"depositKey","type":"uint256","indexed":true},
     {"name":"recipient","type":"address","indexed":false},
     {"name":"sequence","type":"uint64","indexed":false}
   ]}
]`

var l1DepositorABI abi.ABI

func init() {
	var err error
	l1DepositorABI, err = abi.JSON(strings.NewReader(l1DepositorABIJSON))
	if err != nil {
		panic(fmt.Sprintf("handler: parse L1 depositor ABI: %v", err))
	}
}

// l1FundingTx mirrors the L1 depositor's fundingTx tuple, field order and
// types matching the ABI exactly.
type l1FundingTx struct {
	Version      [4]byte
	InputVector  []byte
	OutputVector []byte
	Locktime     [4]byte
}

// l1Reveal mirrors the L1 depositor's reveal tuple.
type l1Reveal struct {
	FundingOutputIndex uint32
	BlindingFactor     [8]byte
	WalletPubKeyHash   [20]byte
	RefundPubKeyHash   [20]byte
	RefundLocktime     [4]byte
	Vault              common.Address
}

// EVM drives the deposit lifecycle for an EVM-compatible L2 (Base,
// Arbitrum, Optimism-family chains, and any other EVM rollup configured
// with platform: evm). Initialize/Finalize authority lives on L1 with the
// BitcoinDepositor contract; the L2-bound bridge contract is only used to
// scan for redemption requests and for finalization events of deposits the
// store already tracks (untracked deposits are not backfilled).
type EVM struct {
	Base
	bridge      *bind.BoundContract
	l1Depositor *bind.BoundContract
}

// NewEVM constructs an EVM adapter bound to the chain's configured L2
// bridge contract (redemption scanning / backfill) and L1 depositor
// contract (initialize / finalize authority).
func NewEVM(b Base) (*EVM, error) {
	bridgeAddr := common.HexToAddress(b.Cfg.ContractAddress)
	bridge := bind.NewBoundContract(bridgeAddr, bridgeABI, b.ChainCtx.L2Client, b.ChainCtx.L2Client, b.ChainCtx.L2Client)

	depositorAddr := common.HexToAddress(b.Cfg.L1DepositorAddress)
	l1Depositor := bind.NewBoundContract(depositorAddr, l1DepositorABI, b.ChainCtx.L1Client, b.ChainCtx.L1Client, b.ChainCtx.L1Client)

	return &EVM{Base: b, bridge: bridge, l1Depositor: l1Depositor}, nil
}

// trimHexPrefix strips an optional 0x/0X prefix before hex.DecodeString.
func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func decodeFixed(field string, s string, n int) ([]byte, error) {
	raw, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	if len(raw) != n {
		return nil, fmt.Errorf("%s: expected %d bytes, got %d", field, n, len(raw))
	}
	return raw, nil
}

// buildInitializeArgs assembles the L1 depositor's fundingTx/reveal tuples
// from the reveal payload recorded on the deposit at intake.
func (h *EVM) buildInitializeArgs(d *store.Deposit) (l1FundingTx, l1Reveal, common.Address, error) {
	var fundingTx l1FundingTx
	var reveal l1Reveal

	if d.L1OutputEvent == nil {
		return fundingTx, reveal, common.Address{}, fmt.Errorf("deposit %s missing funding transaction components", d.ID)
	}

	version, err := decodeFixed("fundingTx.version", d.L1OutputEvent.Version, 4)
	if err != nil {
		return fundingTx, reveal, common.Address{}, err
	}
	copy(fundingTx.Version[:], version)

	inputVector, err := hex.DecodeString(trimHexPrefix(d.L1OutputEvent.InputVector))
	if err != nil {
		return fundingTx, reveal, common.Address{}, fmt.Errorf("decode fundingTx.inputVector: %w", err)
	}
	fundingTx.InputVector = inputVector

	outputVector, err := hex.DecodeString(trimHexPrefix(d.L1OutputEvent.OutputVector))
	if err != nil {
		return fundingTx, reveal, common.Address{}, fmt.Errorf("decode fundingTx.outputVector: %w", err)
	}
	fundingTx.OutputVector = outputVector

	locktime, err := decodeFixed("fundingTx.locktime", d.L1OutputEvent.Locktime, 4)
	if err != nil {
		return fundingTx, reveal, common.Address{}, err
	}
	copy(fundingTx.Locktime[:], locktime)

	reveal.FundingOutputIndex = d.Hashes.FundingOutputIdx

	blinding, err := decodeFixed("reveal.blindingFactor", d.Receipt.BlindingFactor, 8)
	if err != nil {
		return fundingTx, reveal, common.Address{}, err
	}
	copy(reveal.BlindingFactor[:], blinding)

	walletHash, err := decodeFixed("reveal.walletPubKeyHash", d.Receipt.WalletPublicKeyHash, 20)
	if err != nil {
		return fundingTx, reveal, common.Address{}, err
	}
	copy(reveal.WalletPubKeyHash[:], walletHash)

	refundHash, err := decodeFixed("reveal.refundPubKeyHash", d.Receipt.RefundPublicKeyHash, 20)
	if err != nil {
		return fundingTx, reveal, common.Address{}, err
	}
	copy(reveal.RefundPubKeyHash[:], refundHash)

	refundLocktime, err := decodeFixed("reveal.refundLocktime", d.Receipt.RefundLocktime, 4)
	if err != nil {
		return fundingTx, reveal, common.Address{}, err
	}
	copy(reveal.RefundLocktime[:], refundLocktime)

	reveal.Vault = common.HexToAddress(d.Receipt.Vault)

	return fundingTx, reveal, common.HexToAddress(d.Owner), nil
}

func (h *EVM) Initialize(ctx context.Context, d *store.Deposit) error {
	fundingTx, reveal, owner, err := h.buildInitializeArgs(d)
	if err != nil {
		return apperrors.Validation("handler.evm.Initialize", err)
	}

	var staticOut []interface{}
	if err := h.l1Depositor.Call(&bind.CallOpts{Context: ctx}, &staticOut, "initializeDeposit", fundingTx, reveal, owner); err != nil {
		if isBridgeWaitingRevert(err) {
			_ = h.bumpActivity(ctx, d)
			return apperrors.ChainRevertBridgeWaiting("handler.evm.Initialize", h.ChainName(), err)
		}
		return apperrors.ChainRevertPermanent("handler.evm.Initialize", h.ChainName(), err)
	}

	opts, err := h.ChainCtx.L1Nonce.NextOpts(ctx)
	if err != nil {
		return apperrors.TransientRPC("handler.evm.Initialize", h.ChainName(), err)
	}

	tx, err := h.l1Depositor.Transact(opts, "initializeDeposit", fundingTx, reveal, owner)
	if err != nil {
		h.ChainCtx.L1Nonce.Release(opts.Nonce.Uint64())
		if isBridgeWaitingRevert(err) {
			_ = h.bumpActivity(ctx, d)
			return apperrors.ChainRevertBridgeWaiting("handler.evm.Initialize", h.ChainName(), err)
		}
		return apperrors.ChainRevertPermanent("handler.evm.Initialize", h.ChainName(), err)
	}

	d.Hashes.InitializeTxHash = tx.Hash().Hex()
	d.L1TxHash = tx.Hash().Hex()
	if err := h.Deposits.Update(ctx, d); err != nil {
		h.Logger.Printf("deposit %s: persist initializeDeposit tx hash: %v", d.ID, err)
	}

	if _, err := waitConfirmations(ctx, h.ChainCtx.L1Client, tx, h.Cfg.RequiredConfirmations); err != nil {
		return apperrors.TransientRPC("handler.evm.Initialize", h.ChainName(), fmt.Errorf("wait for initializeDeposit receipt: %w", err))
	}

	return h.transition(ctx, d, store.DepositInitialized, "initializeDeposit confirmed on L1")
}

func (h *EVM) Finalize(ctx context.Context, d *store.Deposit) error {
	depositKey, ok := new(big.Int).SetString(d.ID, 10)
	if !ok {
		return apperrors.Validation("handler.evm.Finalize", fmt.Errorf("deposit id %q is not a decimal integer", d.ID))
	}

	var staticOut []interface{}
	if err := h.l1Depositor.Call(&bind.CallOpts{Context: ctx}, &staticOut, "finalizeDeposit", depositKey); err != nil {
		if isBridgeWaitingRevert(err) {
			_ = h.bumpActivity(ctx, d)
			return apperrors.ChainRevertBridgeWaiting("handler.evm.Finalize", h.ChainName(), err)
		}
		return apperrors.ChainRevertPermanent("handler.evm.Finalize", h.ChainName(), err)
	}

	var quoteOut []interface{}
	if err := h.l1Depositor.Call(&bind.CallOpts{Context: ctx}, &quoteOut, "quoteFinalizeDeposit"); err != nil {
		return apperrors.TransientRPC("handler.evm.Finalize", h.ChainName(), fmt.Errorf("quoteFinalizeDeposit: %w", err))
	}
	fee, ok := quoteOut[0].(*big.Int)
	if !ok {
		return apperrors.TransientRPC("handler.evm.Finalize", h.ChainName(), fmt.Errorf("quoteFinalizeDeposit: unexpected return type"))
	}

	opts, err := h.ChainCtx.L1Nonce.NextOpts(ctx)
	if err != nil {
		return apperrors.TransientRPC("handler.evm.Finalize", h.ChainName(), err)
	}
	opts.Value = fee

	tx, err := h.l1Depositor.Transact(opts, "finalizeDeposit", depositKey)
	if err != nil {
		h.ChainCtx.L1Nonce.Release(opts.Nonce.Uint64())
		if isBridgeWaitingRevert(err) {
			_ = h.bumpActivity(ctx, d)
			return apperrors.ChainRevertBridgeWaiting("handler.evm.Finalize", h.ChainName(), err)
		}
		return apperrors.ChainRevertPermanent("handler.evm.Finalize", h.ChainName(), err)
	}

	d.Hashes.FinalizeTxHash = tx.Hash().Hex()
	d.L1TxHash = tx.Hash().Hex()
	if err := h.Deposits.Update(ctx, d); err != nil {
		h.Logger.Printf("deposit %s: persist finalizeDeposit tx hash: %v", d.ID, err)
	}

	receipt, err := waitConfirmations(ctx, h.ChainCtx.L1Client, tx, h.Cfg.RequiredConfirmations)
	if err != nil {
		return apperrors.TransientRPC("handler.evm.Finalize", h.ChainName(), fmt.Errorf("wait for finalizeDeposit receipt: %w", err))
	}

	if !h.Cfg.Platform.SupportsWormholeBridging() {
		return h.transition(ctx, d, store.DepositFinalized, "finalizeDeposit confirmed on L1")
	}

	coreContract := common.HexToAddress(h.Cfg.WormholeCoreContract)
	sequence, err := h.ChainCtx.Wormhole.LocateMessage(receipt, coreContract)
	if err != nil {
		return apperrors.Validation("handler.evm.Finalize", fmt.Errorf("locate wormhole message: %w", err))
	}

	d.WormholeInfo = &store.WormholeInfo{
		Sequence:       fmt.Sprint(sequence),
		EmitterChain:   h.Cfg.WormholeEmitterChain,
		EmitterAddress: evmAddressToUniversal(coreContract),
	}
	return h.transition(ctx, d, store.DepositAwaitingWormholeVAA, "finalizeDeposit confirmed on L1, awaiting VAA")
}

// waitConfirmations waits for tx to be mined, then for confirmations-1
// additional blocks to be mined on top of it, polling the chain's head.
func waitConfirmations(ctx context.Context, client *ethclient.Client, tx *types.Transaction, confirmations int) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return nil, err
	}
	if confirmations <= 1 {
		return receipt, nil
	}
	target := receipt.BlockNumber.Uint64() + uint64(confirmations) - 1
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()
	for {
		latest, err := client.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		if latest >= target {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// mapL1DepositStatus maps the L1 depositor's on-chain status enum to a
// store.DepositStatus. Values the contract doesn't report (0, or anything
// outside the known range) map to nil rather than an invented status, per
// the relayer's decision to treat unknown numeric values as "no
// information" instead of guessing.
func mapL1DepositStatus(raw uint8) *store.DepositStatus {
	var s store.DepositStatus
	switch raw {
	case 1:
		s = store.DepositInitialized
	case 2:
		s = store.DepositFinalized
	case 3:
		s = store.DepositAwaitingWormholeVAA
	case 4:
		s = store.DepositBridged
	default:
		return nil
	}
	return &s
}

// CheckDepositStatus polls the L1 depositor's deposits(id) view to learn
// the chain's authoritative status for a deposit, used to reconcile a
// local record that has fallen behind.
func (h *EVM) CheckDepositStatus(ctx context.Context, id string) (*store.DepositStatus, error) {
	depositKey, ok := new(big.Int).SetString(id, 10)
	if !ok {
		return nil, apperrors.Validation("handler.evm.CheckDepositStatus", fmt.Errorf("deposit id %q is not a decimal integer", id))
	}

	var out []interface{}
	if err := h.l1Depositor.Call(&bind.CallOpts{Context: ctx}, &out, "deposits", depositKey); err != nil {
		return nil, apperrors.TransientRPC("handler.evm.CheckDepositStatus", h.ChainName(), err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	raw, ok := out[0].(uint8)
	if !ok {
		return nil, nil
	}
	return mapL1DepositStatus(raw), nil
}

// SetupListeners subscribes to the L1 vault's OptimisticMintingFinalized
// event, advancing matching deposits to BRIDGED as they're observed rather
// than waiting for the next reconciliation poll.
func (h *EVM) SetupListeners(ctx context.Context) error {
	if h.Cfg.VaultAddress == "" {
		return nil
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(h.Cfg.VaultAddress)},
		Topics:    [][]common.Hash{{l1DepositorABI.Events["OptimisticMintingFinalized"].ID}},
	}
	logsCh := make(chan types.Log)
	sub, err := h.ChainCtx.L1Client.SubscribeFilterLogs(ctx, query, logsCh)
	if err != nil {
		return apperrors.TransientRPC("handler.evm.SetupListeners", h.ChainName(), err)
	}

	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					h.Logger.Printf("optimistic minting subscription error: %v", err)
				}
				return
			case l := <-logsCh:
				h.handleOptimisticMintingFinalized(ctx, l)
			}
		}
	}()
	return nil
}

func (h *EVM) handleOptimisticMintingFinalized(ctx context.Context, l types.Log) {
	if len(l.Topics) < 2 {
		return
	}
	depositKey := new(big.Int).SetBytes(l.Topics[1].Bytes()).String()

	d, err := h.Deposits.GetByID(ctx, depositKey)
	if err != nil {
		return
	}
	if d.Status == store.DepositBridged {
		return
	}
	if err := h.transition(ctx, d, store.DepositBridged, "OptimisticMintingFinalized observed on L1"); err != nil {
		h.Logger.Printf("deposit %s: advance to BRIDGED: %v", d.ID, err)
	}
}

// GetLatestBlock returns the L2's current block number, bounding how far
// PastDepositCheck/ScanPendingRedemptions scan.
func (h *EVM) GetLatestBlock(ctx context.Context) (uint64, error) {
	n, err := h.ChainCtx.L2Client.BlockNumber(ctx)
	if err != nil {
		return 0, apperrors.TransientRPC("handler.evm.GetLatestBlock", h.ChainName(), err)
	}
	return n, nil
}

// evmAddressToUniversal renders a 20-byte EVM address in Wormhole's 32-byte
// universal address form (left-padded with zeros), hex-encoded.
func evmAddressToUniversal(addr common.Address) string {
	var universal [32]byte
	copy(universal[12:], addr.Bytes())
	return hex.EncodeToString(universal[:])
}

func (h *EVM) PastDepositCheck(ctx context.Context, sinceBlock uint64) ([]*store.Deposit, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(sinceBlock),
		Addresses: []common.Address{common.HexToAddress(h.Cfg.ContractAddress)},
		Topics:    [][]common.Hash{{bridgeABI.Events["DepositFinalized"].ID}},
	}

	logs, err := h.ChainCtx.L2Client.FilterLogs(ctx, query)
	if err != nil {
		return nil, apperrors.TransientRPC("handler.evm.PastDepositCheck", h.ChainName(), err)
	}

	var out []*store.Deposit
	for _, l := range logs {
		if len(l.Topics) < 2 {
			continue
		}
		depositKey := new(big.Int).SetBytes(l.Topics[1].Bytes()).String()

		d, err := h.Deposits.GetByID(ctx, depositKey)
		if err == store.ErrDepositNotFound {
			// Finalized on-chain but never tracked locally: the relayer
			// missed the reveal, most likely because it restarted after
			// another relayer instance already revealed and finalized it.
			continue
		}
		if err != nil {
			return nil, apperrors.TransientRPC("handler.evm.PastDepositCheck", h.ChainName(), err)
		}
		if d.Status != store.DepositFinalized && d.Status != store.DepositAwaitingWormholeVAA && d.Status != store.DepositBridged {
			out = append(out, d)
		}
	}
	return out, nil
}

// SupportsPastDepositCheck reports whether this EVM adapter can scan the L2
// bridge directly rather than being configured endpoint-only.
func (h *EVM) SupportsPastDepositCheck() bool {
	return h.Cfg.L2RPC != "" && h.Cfg.ContractAddress != "" && !h.Cfg.UseEndpoint
}

// ScanPendingRedemptions matches on-chain RedemptionRequested events against
// PENDING redemptions already recorded via the reveal API, by redeemer
// output script, and fills in the L2 transaction hash and the WormholeInfo
// needed to fetch a VAA. Every redemption, regardless of originating
// platform, routes through Wormhole uniformly. Redemptions it can't match
// to an event are left for the next tick.
func (h *EVM) ScanPendingRedemptions(ctx context.Context, sinceBlock uint64) ([]*store.Redemption, error) {
	pending, err := h.Redemptions.GetByStatus(ctx, store.RedemptionPending)
	if err != nil {
		return nil, apperrors.TransientRPC("handler.evm.ScanPendingRedemptions", h.ChainName(), err)
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

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(sinceBlock),
		Addresses: []common.Address{common.HexToAddress(h.Cfg.ContractAddress)},
		Topics:    [][]common.Hash{{bridgeABI.Events["RedemptionRequested"].ID}},
	}
	logs, err := h.ChainCtx.L2Client.FilterLogs(ctx, query)
	if err != nil {
		return nil, apperrors.TransientRPC("handler.evm.ScanPendingRedemptions", h.ChainName(), err)
	}

	var out []*store.Redemption
	for _, l := range logs {
		var event struct {
			RedeemerOutputScript []byte
			Amount               *big.Int
		}
		if err := bridgeABI.UnpackIntoInterface(&event, "RedemptionRequested", l.Data); err != nil {
			continue
		}
		r, ok := byScript[hex.EncodeToString(event.RedeemerOutputScript)]
		if !ok {
			continue
		}
		r.L2TxHash = l.TxHash.Hex()

		receipt, err := h.ChainCtx.L2Client.TransactionReceipt(ctx, l.TxHash)
		if err != nil {
			continue
		}
		coreContract := common.HexToAddress(h.Cfg.WormholeCoreContract)
		sequence, err := h.ChainCtx.Wormhole.LocateMessage(receipt, coreContract)
		if err != nil {
			continue
		}
		r.WormholeInfo = &store.WormholeInfo{
			Sequence:       fmt.Sprint(sequence),
			EmitterChain:   h.Cfg.WormholeEmitterChain,
			EmitterAddress: evmAddressToUniversal(coreContract),
		}
		out = append(out, r)
	}
	return out, nil
}

// isBridgeWaitingRevert reports whether a contract revert reason indicates
// the deposit is waiting on a step the relayer doesn't control rather than
// a genuine failure: the L1 depositor reverts with this exact reason when
// the L2 bridge hasn't yet finalized the deposit on its side.
func isBridgeWaitingRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "deposit not finalized by the bridge")
}
