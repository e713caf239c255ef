// Package scheduler implements the Reconciler/Scheduler: a set of
// independently ticking jobs — initialize, finalize, wormhole bridging, past
// deposit reconciliation, redemption processing, and a cleanup tick — each
// running on its own time.NewTicker and guarded by its own mutex so a slow
// tick never blocks the others, following the ticking/mutex-guarded pattern
// this lineage's batch scheduler uses for its single timer.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/handler"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/metrics"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/redemption"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/registry"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Config configures the Scheduler's job intervals. Zero values fall back to
// the package defaults.
type Config struct {
	InitializeInterval     time.Duration
	FinalizeInterval       time.Duration
	WormholeBridgeInterval time.Duration
	PastDepositInterval    time.Duration
	RedemptionInterval     time.Duration
	CleanupInterval        time.Duration

	EnableCleanup       bool
	CleanQueuedAfter    time.Duration
	CleanFinalizedAfter time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.InitializeInterval == 0 {
		out.InitializeInterval = 15 * time.Second
	}
	if out.FinalizeInterval == 0 {
		out.FinalizeInterval = 15 * time.Second
	}
	if out.WormholeBridgeInterval == 0 {
		out.WormholeBridgeInterval = 30 * time.Second
	}
	if out.PastDepositInterval == 0 {
		out.PastDepositInterval = 5 * time.Minute
	}
	if out.RedemptionInterval == 0 {
		out.RedemptionInterval = 30 * time.Second
	}
	if out.CleanupInterval == 0 {
		out.CleanupInterval = time.Hour
	}
	return out
}

// Scheduler owns every reconciler job for the relayer process. One
// Scheduler runs for the whole process, not per chain: each job iterates
// over every registered chain on its own tick.
type Scheduler struct {
	cfg Config

	registry    *registry.Registry
	deposits    *store.DepositRepository
	redemptions *redemption.Service

	logger *log.Logger

	stopCh chan struct{}
	doneWG sync.WaitGroup
}

// New constructs a Scheduler. Call Start to begin ticking.
func New(cfg Config, reg *registry.Registry, deposits *store.DepositRepository, redemptions *redemption.Service) *Scheduler {
	return &Scheduler{
		cfg:         cfg.withDefaults(),
		registry:    reg,
		deposits:    deposits,
		redemptions: redemptions,
		logger:      log.New(log.Writer(), "[Scheduler] ", log.LstdFlags),
	}
}

// Start launches every job's ticking goroutine. Returns immediately; jobs
// run until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.stopCh = make(chan struct{})

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context)
	}{
		{"initialize", s.cfg.InitializeInterval, s.runInitialize},
		{"finalize", s.cfg.FinalizeInterval, s.runFinalize},
		{"wormhole-bridge", s.cfg.WormholeBridgeInterval, s.runWormholeBridge},
		{"past-deposit-check", s.cfg.PastDepositInterval, s.runPastDepositCheck},
		{"redemption", s.cfg.RedemptionInterval, s.runRedemption},
	}
	if s.cfg.EnableCleanup {
		jobs = append(jobs, struct {
			name     string
			interval time.Duration
			run      func(context.Context)
		}{"cleanup", s.cfg.CleanupInterval, s.runCleanup})
	}

	for _, j := range jobs {
		s.doneWG.Add(1)
		go s.tick(ctx, j.name, j.interval, j.run)
	}
}

// Stop signals every job to exit and waits for them to finish their current
// tick.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.doneWG.Wait()
	s.logger.Println("scheduler stopped")
}

// tick runs fn on a fixed interval, skipping an overlapping invocation if
// the previous one is still running rather than queuing, so a slow chain
// RPC never causes unbounded goroutine buildup for that job. Each job gets
// its own mutex so one chain's slow tick never blocks another job.
func (s *Scheduler) tick(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	defer s.doneWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var mu sync.Mutex
	running := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			mu.Lock()
			if running {
				mu.Unlock()
				continue
			}
			running = true
			mu.Unlock()

			func() {
				defer func() {
					mu.Lock()
					running = false
					mu.Unlock()
				}()
				start := time.Now()
				fn(ctx)
				metrics.JobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
				metrics.JobRuns.WithLabelValues(name, "ok").Inc()
			}()
		}
	}
}

// runInitialize advances every QUEUED deposit to INITIALIZED.
func (s *Scheduler) runInitialize(ctx context.Context) {
	s.forEachDepositIn(ctx, store.DepositQueued, func(h handler.Handler, d *store.Deposit) {
		if err := h.Initialize(ctx, d); err != nil {
			s.handleJobError(ctx, "initialize", d, err)
		}
	})
}

// runFinalize advances every INITIALIZED deposit to FINALIZED (or
// AWAITING_WORMHOLE_VAA for Wormhole-bridging platforms).
func (s *Scheduler) runFinalize(ctx context.Context) {
	s.forEachDepositIn(ctx, store.DepositInitialized, func(h handler.Handler, d *store.Deposit) {
		if err := h.Finalize(ctx, d); err != nil {
			s.handleJobError(ctx, "finalize", d, err)
		}
	})
}

// runWormholeBridge advances every AWAITING_WORMHOLE_VAA deposit to BRIDGED
// on chains whose handler implements WormholeBridger.
func (s *Scheduler) runWormholeBridge(ctx context.Context) {
	s.forEachDepositIn(ctx, store.DepositAwaitingWormholeVAA, func(h handler.Handler, d *store.Deposit) {
		bridger, ok := h.(handler.WormholeBridger)
		if !ok {
			return
		}
		if err := bridger.ProcessWormholeBridging(ctx, d); err != nil {
			s.handleJobError(ctx, "wormhole-bridge", d, err)
		}
	})
}

// runPastDepositCheck runs each chain's past-event scan and re-saves the
// deposits it returns without changing their status, then reconciles every
// individual active deposit against the chain's authoritative per-deposit
// status; that per-deposit step is what advances a local record that has
// fallen behind.
func (s *Scheduler) runPastDepositCheck(ctx context.Context) {
	for _, name := range s.registry.List() {
		h, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		if !h.SupportsPastDepositCheck() {
			continue
		}
		found, err := h.PastDepositCheck(ctx, 0)
		if err != nil {
			s.logger.Printf("past-deposit-check[%s]: %v", name, err)
			continue
		}
		for _, d := range found {
			s.logger.Printf("past-deposit-check[%s]: reconciling deposit %s to %s", name, d.ID, d.Status)
			if err := s.deposits.Update(ctx, d); err != nil {
				s.logger.Printf("past-deposit-check[%s]: persist reconciled deposit %s: %v", name, d.ID, err)
			}
		}
	}
	s.reconcileDepositStatuses(ctx)
	s.refreshStatusGauges(ctx)
}

// depositStatusRank orders deposit statuses along the lifecycle so a
// chain-reported status can be compared against the locally stored one.
// Unknown statuses rank -1 and are never advanced to or from.
func depositStatusRank(s store.DepositStatus) int {
	switch s {
	case store.DepositQueued:
		return 0
	case store.DepositInitialized:
		return 1
	case store.DepositFinalized:
		return 2
	case store.DepositAwaitingWormholeVAA:
		return 3
	case store.DepositBridged:
		return 4
	default:
		return -1
	}
}

// reconcileDepositStatuses polls each active deposit's chain-authoritative
// status and advances the local record forward when the chain reports a
// later status than the store holds. It never moves a deposit backward: a
// handler's view can lag (e.g. an RPC node behind the chain head), and
// regressing a deposit on stale information would violate the rule that a
// deposit's status only ever moves forward.
func (s *Scheduler) reconcileDepositStatuses(ctx context.Context) {
	for _, st := range []store.DepositStatus{
		store.DepositQueued, store.DepositInitialized, store.DepositFinalized, store.DepositAwaitingWormholeVAA,
	} {
		deposits, err := s.deposits.GetByStatus(ctx, st)
		if err != nil {
			s.logger.Printf("reconcile-deposit-statuses[%s]: %v", st, err)
			continue
		}
		for _, d := range deposits {
			h, ok := s.registry.Get(d.ChainName)
			if !ok {
				continue
			}
			chainStatus, err := h.CheckDepositStatus(ctx, d.ID)
			if err != nil {
				s.logger.Printf("reconcile-deposit-statuses[%s/%s]: %v", d.ChainName, d.ID, err)
				continue
			}
			if chainStatus == nil {
				continue
			}
			if depositStatusRank(*chainStatus) <= depositStatusRank(d.Status) {
				continue
			}
			s.logger.Printf("reconcile-deposit-statuses[%s]: deposit %s jumping %s -> %s", d.ChainName, d.ID, d.Status, *chainStatus)
			d.Status = *chainStatus
			if d.Dates == nil {
				d.Dates = store.Dates{}
			}
			now := time.Now()
			d.Dates[string(*chainStatus)] = now
			d.LastActivityAt = now
			if err := s.deposits.Update(ctx, d); err != nil {
				s.logger.Printf("reconcile-deposit-statuses[%s/%s]: persist: %v", d.ChainName, d.ID, err)
			}
		}
	}
}

// refreshStatusGauges recomputes the deposits-by-status gauge across every
// registered chain, piggybacking on the past-deposit-check tick rather than
// running its own ticker.
func (s *Scheduler) refreshStatusGauges(ctx context.Context) {
	statuses := []store.DepositStatus{
		store.DepositQueued, store.DepositInitialized, store.DepositFinalized,
		store.DepositAwaitingWormholeVAA, store.DepositBridged,
	}
	for _, name := range s.registry.List() {
		for _, st := range statuses {
			deposits, err := s.deposits.GetByStatus(ctx, st)
			if err != nil {
				continue
			}
			count := 0
			for _, d := range deposits {
				if d.ChainName == name {
					count++
				}
			}
			metrics.DepositsByStatus.WithLabelValues(name, string(st)).Set(float64(count))
		}
	}
}

// runRedemption scans each chain whose handler implements RedemptionHandler
// for newly-submitted redemptions, then drives the redemption service's
// PENDING and VAA_FETCHED queues.
func (s *Scheduler) runRedemption(ctx context.Context) {
	for _, name := range s.registry.List() {
		h, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		scanner, ok := h.(handler.RedemptionHandler)
		if !ok {
			continue
		}
		found, err := scanner.ScanPendingRedemptions(ctx, 0)
		if err != nil {
			s.logger.Printf("redemption-scan[%s]: %v", name, err)
			continue
		}
		for _, r := range found {
			if err := s.redemptions.Persist(ctx, r); err != nil {
				s.logger.Printf("redemption-scan[%s]: persist redemption %s: %v", name, r.ID, err)
			}
		}
	}

	if err := s.redemptions.ProcessPending(ctx); err != nil {
		s.logger.Printf("redemption.ProcessPending: %v", err)
	}
	if err := s.redemptions.ProcessVAAFetched(ctx); err != nil {
		s.logger.Printf("redemption.ProcessVAAFetched: %v", err)
	}
}

// runCleanup is the cleanup job's tick. It only logs the tick: it deletes
// no records, and CleanQueuedAfter and CleanFinalizedAfter are not read.
func (s *Scheduler) runCleanup(ctx context.Context) {
	s.logger.Println("cleanup tick")
}

func (s *Scheduler) forEachDepositIn(ctx context.Context, status store.DepositStatus, fn func(handler.Handler, *store.Deposit)) {
	deposits, err := s.deposits.GetByStatus(ctx, status)
	if err != nil {
		s.logger.Printf("forEachDepositIn[%s]: %v", status, err)
		return
	}
	for _, d := range deposits {
		h, ok := s.registry.Get(d.ChainName)
		if !ok {
			s.logger.Printf("forEachDepositIn[%s]: no handler registered for chain %q", status, d.ChainName)
			continue
		}
		fn(h, d)
	}
}

// handleJobError applies the error taxonomy's retry/fail decision: bridge-
// waiting reverts and transient RPC errors are logged and left for the next
// tick. A permanent error is recorded on the deposit's error field, but its
// status is left exactly where it was — the deposit enum has no FAILED
// state, and a permanent error just means this tick's attempt didn't
// advance it; the next tick (or a reconciliation jump) may still.
func (s *Scheduler) handleJobError(ctx context.Context, job string, d *store.Deposit, err error) {
	if apperrors.Retryable(err) {
		s.logger.Printf("%s[%s]: retryable: %v", job, d.ID, err)
		return
	}

	s.logger.Printf("%s[%s]: permanent failure: %v", job, d.ID, err)
	d.Error = err.Error()
	if uerr := s.deposits.Update(ctx, d); uerr != nil {
		s.logger.Printf("%s[%s]: persist failure error: %v", job, d.ID, uerr)
	}
}
