// Package redemption implements the Redemption Service: the single,
// platform-uniform PENDING -> VAA_FETCHED -> COMPLETED pipeline every
// redemption request moves through, regardless of which L2 it originated
// on, ending in a submission to the chain's L1 BitcoinRedeemer contract.
package redemption

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/chain"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/config"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/statusmirror"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Exact error messages the spec's testable properties assert on; callers
// must not substitute a wrapped cause for these.
const (
	errMsgVAAFailed        = "VAA fetch/verify failed"
	errMsgL1SubmitFailed   = "L1 submission failed (see logs for details)"
	errMsgL1TxTimeout      = "L1_TX_TIMEOUT"
)

func errUnknownChain(name string) error   { return fmt.Errorf("redemption: unknown chain %q", name) }
func errInvalidEmitter(addr string) error { return fmt.Errorf("redemption: invalid emitter address %q", addr) }

// Binding pairs a configured chain's runtime context with its static
// configuration, the two pieces the redemption service needs per chain.
type Binding struct {
	Ctx *chain.Context
	Cfg *config.ChainConfig
}

// Service drives redemption requests across every configured chain. Every
// redemption, regardless of originating platform, waits for its Wormhole
// message to be located by the chain handler's RedemptionHandler scan, then
// fetches and verifies its VAA here before submitting completion to L1.
type Service struct {
	redemptions *store.RedemptionRepository
	audit       *store.AuditRepository
	chains      map[string]Binding
	mirror      *statusmirror.Client
	logger      *log.Logger
}

// NewService constructs a redemption Service over the given chain bindings.
func NewService(redemptions *store.RedemptionRepository, audit *store.AuditRepository, chains map[string]Binding, mirror *statusmirror.Client) *Service {
	return &Service{
		redemptions: redemptions,
		audit:       audit,
		chains:      chains,
		mirror:      mirror,
		logger:      log.New(log.Writer(), "[Redemption] ", log.LstdFlags),
	}
}

// Persist writes an updated redemption record, used by the scheduler after a
// chain handler's RedemptionHandler scan fills in L2TxHash or WormholeInfo.
func (s *Service) Persist(ctx context.Context, r *store.Redemption) error {
	if err := s.redemptions.Update(ctx, r); err != nil {
		return apperrors.TransientRPC("redemption.Persist", r.ChainName, err)
	}
	return nil
}

// ProcessPending advances every PENDING redemption whose Chain Handler has
// located its Wormhole message: fetch and verify the VAA, then submit
// completion to L1.
func (s *Service) ProcessPending(ctx context.Context) error {
	pending, err := s.redemptions.GetByStatus(ctx, store.RedemptionPending)
	if err != nil {
		return apperrors.TransientRPC("redemption.ProcessPending", "", err)
	}

	for _, r := range pending {
		if err := s.processOnePending(ctx, r); err != nil {
			s.logger.Printf("redemption %s: %v", r.ID, err)
		}
	}
	return nil
}

func (s *Service) processOnePending(ctx context.Context, r *store.Redemption) error {
	b, ok := s.chains[r.ChainName]
	if !ok {
		return apperrors.Validation("redemption.processOnePending", errUnknownChain(r.ChainName))
	}

	if r.WormholeInfo == nil || r.WormholeInfo.Sequence == "" {
		// Waiting on the chain handler's RedemptionHandler scan to locate
		// the Wormhole message; nothing to do yet this tick.
		return nil
	}

	vaa, err := s.fetchVAA(ctx, b, r)
	if err != nil {
		if apperrors.Classify(err) == apperrors.KindVAANotFound {
			return nil // not yet available, retry next tick
		}
		return s.fail(ctx, r, store.RedemptionVAAFailed, errMsgVAAFailed, err)
	}

	now := time.Now()
	r.WormholeInfo.VAABytes = hex.EncodeToString(vaa)
	r.Dates.VAAFetchedAt = &now
	if err := s.transition(ctx, r, store.RedemptionVAAFetched, "vaa fetched and verified"); err != nil {
		return err
	}
	return s.completeOnL1(ctx, b, r, vaa)
}

// ProcessVAAFetched retries L1 completion for redemptions that fetched
// their VAA but have not yet confirmed on L1 (e.g. after a restart).
func (s *Service) ProcessVAAFetched(ctx context.Context) error {
	fetched, err := s.redemptions.GetByStatus(ctx, store.RedemptionVAAFetched)
	if err != nil {
		return apperrors.TransientRPC("redemption.ProcessVAAFetched", "", err)
	}

	for _, r := range fetched {
		b, ok := s.chains[r.ChainName]
		if !ok || r.WormholeInfo == nil {
			continue
		}
		vaaBytes, err := hex.DecodeString(r.WormholeInfo.VAABytes)
		if err != nil {
			s.logger.Printf("redemption %s: stored vaa bytes invalid: %v", r.ID, err)
			continue
		}
		if err := s.completeOnL1(ctx, b, r, vaaBytes); err != nil {
			s.logger.Printf("redemption %s: %v", r.ID, err)
		}
	}
	return nil
}

func (s *Service) fetchVAA(ctx context.Context, b Binding, r *store.Redemption) ([]byte, error) {
	var emitter [32]byte
	raw, err := hex.DecodeString(r.WormholeInfo.EmitterAddress)
	if err != nil || len(raw) != 32 {
		return nil, apperrors.Validation("redemption.fetchVAA", errInvalidEmitter(r.WormholeInfo.EmitterAddress))
	}
	copy(emitter[:], raw)

	sequence, err := strconv.ParseUint(r.WormholeInfo.Sequence, 10, 64)
	if err != nil {
		return nil, apperrors.Validation("redemption.fetchVAA", err)
	}

	vaa, err := b.Ctx.Wormhole.FetchAndVerify(ctx, r.WormholeInfo.EmitterChain, emitter, sequence)
	if err != nil {
		return nil, err
	}
	return vaa.Bytes, nil
}

// leftPad32 renders hexStr (with or without a 0x prefix) as a 32-byte
// left-padded array, the form finalizeL2Redemption expects for
// walletPubKeyHash.
func leftPad32(hexStr string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(trimHexPrefix(hexStr))
	if err != nil {
		return out, err
	}
	if len(raw) > 32 {
		return out, fmt.Errorf("redemption: walletPubKeyHash %d bytes exceeds 32", len(raw))
	}
	copy(out[32-len(raw):], raw)
	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

type mainUtxoTuple struct {
	TxHash        [32]byte
	TxOutputIndex uint32
	TxOutputValue uint64
}

// completeOnL1 submits a redemption's verified VAA to the chain's L1
// BitcoinRedeemer contract via finalizeL2Redemption, waiting for confirmed
// L1 inclusion before the redemption is considered COMPLETED.
func (s *Service) completeOnL1(ctx context.Context, b Binding, r *store.Redemption, vaaBytes []byte) error {
	walletPubKeyHash, err := leftPad32(r.WalletPubKeyHash)
	if err != nil {
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, fmt.Errorf("redemption.completeOnL1: encode walletPubKeyHash: %w", err))
	}

	var mainUtxo mainUtxoTuple
	if r.MainUtxo != nil {
		txHash, err := hex.DecodeString(trimHexPrefix(r.MainUtxo.TxHash))
		if err != nil || len(txHash) > 32 {
			return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, fmt.Errorf("redemption.completeOnL1: encode mainUtxo.txHash: %w", err))
		}
		copy(mainUtxo.TxHash[32-len(txHash):], txHash)
		mainUtxo.TxOutputIndex = r.MainUtxo.TxOutputIndex
		if v, ok := new(big.Int).SetString(r.MainUtxo.TxOutputValue, 10); ok {
			mainUtxo.TxOutputValue = v.Uint64()
		}
	}

	amount, ok := new(big.Int).SetString(r.Amount, 10)
	if !ok {
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, fmt.Errorf("redemption.completeOnL1: invalid amount %q", r.Amount))
	}

	redeemerAddr := common.HexToAddress(b.Cfg.L1RedeemerAddress)
	redeemer := bind.NewBoundContract(redeemerAddr, l1RedeemerABI, b.Ctx.L1Client, b.Ctx.L1Client, b.Ctx.L1Client)

	calldata, err := l1RedeemerABI.Pack("finalizeL2Redemption", walletPubKeyHash, mainUtxo, amount, vaaBytes)
	if err != nil {
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, fmt.Errorf("redemption.completeOnL1: pack calldata: %w", err))
	}

	opts, err := b.Ctx.L1Nonce.NextOpts(ctx)
	if err != nil {
		return apperrors.TransientRPC("redemption.completeOnL1", b.Cfg.ChainName, err)
	}

	gasEstimate, err := b.Ctx.L1Client.EstimateGas(ctx, ethereum.CallMsg{
		From: b.Ctx.L1Nonce.Address(), To: &redeemerAddr, Data: calldata,
	})
	if err != nil {
		b.Ctx.L1Nonce.Release(opts.Nonce.Uint64())
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, fmt.Errorf("redemption.completeOnL1: estimate gas: %w", err))
	}
	multiplier := b.Cfg.GasLimitMultiplier
	if multiplier <= 0 {
		multiplier = 1.2
	}
	opts.GasLimit = uint64(float64(gasEstimate) * multiplier)

	tx, err := redeemer.Transact(opts, "finalizeL2Redemption", walletPubKeyHash, mainUtxo, amount, vaaBytes)
	if err != nil {
		b.Ctx.L1Nonce.Release(opts.Nonce.Uint64())
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, apperrors.ChainRevertPermanent("redemption.completeOnL1", b.Cfg.ChainName, err))
	}

	r.L1TxHash = tx.Hash().Hex()
	now := time.Now()
	r.Dates.L1SubmittedAt = &now
	if err := s.Persist(ctx, r); err != nil {
		s.logger.Printf("redemption %s: persist l1 tx hash: %v", r.ID, err)
	}

	timeout := b.Cfg.L1TxTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, b.Ctx.L1Client, tx)
	if err != nil {
		if waitCtx.Err() != nil {
			return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, apperrors.L1SubmissionFailure("redemption.completeOnL1", errors.New(errMsgL1TxTimeout)))
		}
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, apperrors.TransientRPC("redemption.completeOnL1", b.Cfg.ChainName, err))
	}
	if receipt.Status == 0 {
		return s.fail(ctx, r, store.RedemptionFailed, errMsgL1SubmitFailed, apperrors.ChainRevertPermanent("redemption.completeOnL1", b.Cfg.ChainName, fmt.Errorf("finalizeL2Redemption reverted")))
	}

	completed := time.Now()
	r.Dates.CompletedAt = &completed
	return s.transition(ctx, r, store.RedemptionCompleted, "finalizeL2Redemption confirmed on L1")
}

func (s *Service) transition(ctx context.Context, r *store.Redemption, to store.RedemptionStatus, message string) error {
	from := r.Status
	r.Status = to
	r.LastActivityAt = time.Now()
	r.Logs = append(r.Logs, string(to)+" at "+r.LastActivityAt.UTC().Format(time.RFC3339))

	if err := s.redemptions.Update(ctx, r); err != nil {
		return apperrors.TransientRPC("redemption.transition", r.ChainName, err)
	}
	if s.audit != nil {
		_ = s.audit.Append(ctx, store.AuditLog{
			EntityKind: "redemption",
			EntityID:   r.ID,
			ChainName:  r.ChainName,
			FromStatus: string(from),
			ToStatus:   string(to),
			Message:    message,
		})
	}
	if s.mirror != nil {
		s.mirror.MirrorRedemption(ctx, statusmirror.RedemptionSnapshot{
			RedemptionID: r.ID, ChainName: r.ChainName, Status: string(to),
			L1TxHash: r.L1TxHash, Error: r.Error, ObservedAt: time.Now(),
		})
	}
	return nil
}

// fail transitions a redemption to a terminal failure status, recording the
// spec's fixed error message on the record while keeping the real cause in
// the audit log detail.
func (s *Service) fail(ctx context.Context, r *store.Redemption, to store.RedemptionStatus, errMsg string, cause error) error {
	r.Error = errMsg
	if tErr := s.transition(ctx, r, to, fmt.Sprintf("%s: %v", errMsg, cause)); tErr != nil {
		return tErr
	}
	return fmt.Errorf("%s: %w", errMsg, cause)
}
