package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/registry"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Server wraps the relayer's HTTP surface in a plain net/http.Server, built
// on http.ServeMux's method+path pattern matching rather than a third-party
// router, matching the rest of this lineage's server package.
type Server struct {
	httpServer *http.Server
}

// New builds a Server listening on addr, wiring every registered route.
func New(addr string, deposits *store.DepositRepository, redemptions *store.RedemptionRepository, reg *registry.Registry, storeClient *store.Client) *Server {
	depositHandlers := NewDepositHandlers(deposits, reg)
	redemptionHandlers := NewRedemptionHandlers(redemptions, reg)
	healthHandlers := NewHealthHandlers(storeClient, reg)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/{chainName}/reveal", depositHandlers.HandleReveal)
	mux.HandleFunc("GET /api/deposits/{id}", depositHandlers.HandleDepositStatus)
	mux.HandleFunc("GET /api/chains/{chain}/deposits", depositHandlers.HandleListDeposits)
	mux.HandleFunc("POST /api/redemptions", redemptionHandlers.HandleRequestRedemption)
	mux.HandleFunc("GET /api/redemptions/{id}", redemptionHandlers.HandleRedemptionStatus)
	mux.HandleFunc("GET /healthz", healthHandlers.HandleHealth)
	mux.HandleFunc("GET /api/status", healthHandlers.HandleStatus)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start begins serving and blocks until the server stops or fails to start.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// HealthHandlers serves process and dependency health checks.
type HealthHandlers struct {
	storeClient *store.Client
	registry    *registry.Registry
}

// NewHealthHandlers constructs health/status HTTP handlers.
func NewHealthHandlers(storeClient *store.Client, reg *registry.Registry) *HealthHandlers {
	return &HealthHandlers{storeClient: storeClient, registry: reg}
}

// HandleHealth handles GET /healthz: a liveness probe that also verifies the
// operation store is reachable.
func (h *HealthHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.storeClient.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleStatus handles GET /api/status: the set of configured chains.
func (h *HealthHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"chains": h.registry.List()})
}
