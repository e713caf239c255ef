// Package server provides the relayer's HTTP surface: deposit reveal
// intake, status queries, operations listing, and health checks. Handlers
// are thin collaborators over pkg/store and pkg/handler with no independent
// business logic of their own, following the plain net/http handler style
// this lineage's server package uses rather than a third-party router.
package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/btctx"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/registry"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// DepositHandlers serves the deposit reveal-intake and status-query
// endpoints.
type DepositHandlers struct {
	deposits *store.DepositRepository
	registry *registry.Registry
}

// NewDepositHandlers constructs deposit-related HTTP handlers.
func NewDepositHandlers(deposits *store.DepositRepository, reg *registry.Registry) *DepositHandlers {
	return &DepositHandlers{deposits: deposits, registry: reg}
}

type revealFundingTx struct {
	Version      string `json:"version"`
	InputVector  string `json:"inputVector"`
	OutputVector string `json:"outputVector"`
	Locktime     string `json:"locktime"`
}

type revealReveal struct {
	FundingOutputIndex uint32 `json:"fundingOutputIndex"`
	BlindingFactor     string `json:"blindingFactor"`
	WalletPubKeyHash   string `json:"walletPubKeyHash"`
	RefundPubKeyHash   string `json:"refundPubKeyHash"`
	RefundLocktime     string `json:"refundLocktime"`
	Vault              string `json:"vault"`
}

type revealRequest struct {
	FundingTx      revealFundingTx `json:"fundingTx"`
	Reveal         revealReveal    `json:"reveal"`
	L2DepositOwner string          `json:"l2DepositOwner"`
	L2Sender       string          `json:"l2Sender"`
}

type revealResponse struct {
	Success   bool           `json:"success"`
	DepositID string         `json:"depositId,omitempty"`
	Message   string         `json:"message,omitempty"`
	Existing  bool           `json:"existing,omitempty"`
	Receipt   *store.Receipt `json:"receipt,omitempty"`
}

type revealErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeRevealError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(revealErrorResponse{Success: false, Error: errMsg, Details: details})
}

// HandleReveal handles POST /api/{chainName}/reveal: idempotent intake of a
// new deposit reveal. The canonical deposit id is derived from the funding
// transaction itself rather than assigned, so resubmitting the same reveal
// is a no-op that reports the existing deposit instead of creating a
// duplicate or failing.
func (h *DepositHandlers) HandleReveal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeRevealError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req revealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRevealError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	chainName := r.PathValue("chainName")
	handler, ok := h.registry.Get(chainName)
	if !ok {
		writeRevealError(w, http.StatusBadRequest, "unknown chain", fmt.Sprintf("chain %q is not configured", chainName))
		return
	}
	if req.L2DepositOwner == "" || req.L2Sender == "" {
		writeRevealError(w, http.StatusBadRequest, "validation failed", "l2DepositOwner and l2Sender are required")
		return
	}

	version, err := hex.DecodeString(trimHex(req.FundingTx.Version))
	if err != nil {
		writeRevealError(w, http.StatusBadRequest, "validation failed", fmt.Sprintf("fundingTx.version: %v", err))
		return
	}
	inputVector, err := hex.DecodeString(trimHex(req.FundingTx.InputVector))
	if err != nil {
		writeRevealError(w, http.StatusBadRequest, "validation failed", fmt.Sprintf("fundingTx.inputVector: %v", err))
		return
	}
	outputVector, err := hex.DecodeString(trimHex(req.FundingTx.OutputVector))
	if err != nil {
		writeRevealError(w, http.StatusBadRequest, "validation failed", fmt.Sprintf("fundingTx.outputVector: %v", err))
		return
	}
	locktime, err := hex.DecodeString(trimHex(req.FundingTx.Locktime))
	if err != nil {
		writeRevealError(w, http.StatusBadRequest, "validation failed", fmt.Sprintf("fundingTx.locktime: %v", err))
		return
	}

	raw := btctx.AssembleRaw(version, inputVector, outputVector, locktime)
	fundingTx, err := btctx.Parse(raw)
	if err != nil {
		writeRevealError(w, http.StatusBadRequest, "validation failed", fmt.Sprintf("funding transaction: %v", err))
		return
	}
	if _, err := fundingTx.OutputAt(req.Reveal.FundingOutputIndex); err != nil {
		writeRevealError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	depositID := btctx.DepositID(fundingTx.Hash, req.Reveal.FundingOutputIndex)

	existing, err := h.deposits.GetByID(r.Context(), depositID)
	if err != nil && err != store.ErrDepositNotFound {
		writeRevealError(w, http.StatusInternalServerError, "lookup failed", err.Error())
		return
	}
	if existing != nil {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(revealResponse{Success: true, DepositID: depositID, Existing: true})
		return
	}

	d := &store.Deposit{
		ID:        depositID,
		ChainName: chainName,
		Status:    store.DepositQueued,
		Owner:     req.L2DepositOwner,
		Hashes: store.Hashes{
			FundingTxHash:    fundingTx.Hash.String(),
			FundingOutputIdx: req.Reveal.FundingOutputIndex,
			DepositKey:       depositID,
		},
		Receipt: store.Receipt{
			DepositorAddress:    req.L2Sender,
			BlindingFactor:      req.Reveal.BlindingFactor,
			WalletPublicKeyHash: req.Reveal.WalletPubKeyHash,
			RefundPublicKeyHash: req.Reveal.RefundPubKeyHash,
			RefundLocktime:      req.Reveal.RefundLocktime,
			Vault:               req.Reveal.Vault,
		},
		L1OutputEvent: &store.L1OutputEvent{
			Version:      req.FundingTx.Version,
			InputVector:  req.FundingTx.InputVector,
			OutputVector: req.FundingTx.OutputVector,
			Locktime:     req.FundingTx.Locktime,
		},
		Dates: store.Dates{},
	}

	if err := h.deposits.Create(r.Context(), d); err != nil {
		if err == store.ErrDuplicateDeposit {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(revealResponse{Success: true, DepositID: depositID, Existing: true})
			return
		}
		writeRevealError(w, http.StatusInternalServerError, "failed to store deposit", err.Error())
		return
	}

	if err := handler.Initialize(r.Context(), d); err != nil {
		writeRevealError(w, http.StatusInternalServerError, "initialize failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(revealResponse{
		Success:   true,
		DepositID: depositID,
		Message:   "Deposit initialized successfully",
		Receipt:   &d.Receipt,
	})
}

func trimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// HandleDepositStatus handles GET /api/deposits/{id}.
func (h *DepositHandlers) HandleDepositStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing deposit id")
		return
	}

	d, err := h.deposits.GetByID(r.Context(), id)
	if err == store.ErrDepositNotFound {
		writeError(w, http.StatusNotFound, "deposit not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load deposit: %v", err))
		return
	}
	_ = json.NewEncoder(w).Encode(d)
}

// HandleListDeposits handles GET /api/chains/{chain}/deposits.
func (h *DepositHandlers) HandleListDeposits(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	chainName := r.PathValue("chain")
	if chainName == "" {
		writeError(w, http.StatusBadRequest, "missing chain name")
		return
	}

	deposits, err := h.deposits.GetAllByChain(r.Context(), chainName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list deposits: %v", err))
		return
	}
	_ = json.NewEncoder(w).Encode(deposits)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
