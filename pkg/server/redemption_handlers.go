package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/registry"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// RedemptionHandlers serves redemption request intake and status queries.
type RedemptionHandlers struct {
	redemptions *store.RedemptionRepository
	registry    *registry.Registry
}

// NewRedemptionHandlers constructs redemption-related HTTP handlers.
func NewRedemptionHandlers(redemptions *store.RedemptionRepository, reg *registry.Registry) *RedemptionHandlers {
	return &RedemptionHandlers{redemptions: redemptions, registry: reg}
}

type redemptionRequest struct {
	ChainName            string `json:"chainName"`
	RequesterAddress     string `json:"requesterAddress"`
	Amount               string `json:"amount"`
	RedeemerOutputScript string `json:"redeemerOutputScript"`
}

// HandleRequestRedemption handles POST /api/redemptions.
func (h *RedemptionHandlers) HandleRequestRedemption(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req redemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if !h.registry.Has(req.ChainName) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("chain %q is not configured", req.ChainName))
		return
	}

	red := &store.Redemption{
		ID:                   uuid.NewString(),
		ChainName:            req.ChainName,
		Status:               store.RedemptionPending,
		RequesterAddress:     req.RequesterAddress,
		Amount:               req.Amount,
		RedeemerOutputScript: req.RedeemerOutputScript,
		CreatedAt:            time.Now(),
	}

	if err := h.redemptions.Create(r.Context(), red); err != nil {
		if err == store.ErrDuplicateRedemption {
			writeError(w, http.StatusConflict, "redemption already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store redemption: %v", err))
		return
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(red)
}

// HandleRedemptionStatus handles GET /api/redemptions/{id}.
func (h *RedemptionHandlers) HandleRedemptionStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing redemption id")
		return
	}

	red, err := h.redemptions.GetByID(r.Context(), id)
	if err == store.ErrRedemptionNotFound {
		writeError(w, http.StatusNotFound, "redemption not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load redemption: %v", err))
		return
	}
	_ = json.NewEncoder(w).Encode(red)
}
