// Package registry implements the Handler Registry: a write-once-at-startup,
// read-only-thereafter lookup of chain name to Chain Handler. Unlike this
// lineage's strategy registry, this is never a package-level singleton: the
// caller constructs one Registry in main, populates it during startup wiring,
// and passes it explicitly to the scheduler and the HTTP server. Nothing
// reaches it through a global accessor.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/handler"
)

// Registry maps a configured chain name to its Chain Handler.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]handler.Handler
	sealed   bool
}

// New returns an empty Registry ready for Register calls during startup.
func New() *Registry {
	return &Registry{handlers: make(map[string]handler.Handler)}
}

// Register adds a handler for a chain name. Panics if called after Seal, or
// with a chain name already registered — both indicate a startup wiring bug,
// not a runtime condition callers should handle.
func (r *Registry) Register(chainName string, h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(fmt.Sprintf("registry: Register(%q) called after Seal", chainName))
	}
	if _, exists := r.handlers[chainName]; exists {
		panic(fmt.Sprintf("registry: chain %q registered twice", chainName))
	}
	r.handlers[chainName] = h
}

// Seal marks the registry read-only. Startup wiring calls this once every
// configured chain has been registered.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Get returns the handler for chainName and whether it was found.
func (r *Registry) Get(chainName string) (handler.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[chainName]
	return h, ok
}

// Has reports whether a handler is registered for chainName.
func (r *Registry) Has(chainName string) bool {
	_, ok := r.Get(chainName)
	return ok
}

// List returns every registered chain name, sorted for deterministic
// iteration order in the scheduler and status endpoints.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
