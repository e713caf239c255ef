// Package metrics exposes Prometheus metrics for the reconciler's job runs
// and the relayer's deposit/redemption lifecycle, registered against the
// default registry. cmd/relayer does not serve them over HTTP: no listener
// is started on Config.MetricsAddr.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobRuns counts every scheduler job tick, labeled by job name and
	// outcome; the scheduler records every completed tick as "ok".
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relayer",
		Name:      "job_runs_total",
		Help:      "Total number of scheduler job ticks, by job name and outcome.",
	}, []string{"job", "outcome"})

	// JobDuration records how long each scheduler job tick took.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relayer",
		Name:      "job_duration_seconds",
		Help:      "Duration of a scheduler job tick.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})

	// DepositsByStatus gauges the current count of deposits in each status,
	// labeled by chain name, refreshed on each past-deposit-check tick.
	DepositsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relayer",
		Name:      "deposits_by_status",
		Help:      "Current number of deposits in each status, by chain.",
	}, []string{"chain", "status"})

	// RedemptionsByStatus mirrors DepositsByStatus for redemptions.
	RedemptionsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relayer",
		Name:      "redemptions_by_status",
		Help:      "Current number of redemptions in each status, by chain.",
	}, []string{"chain", "status"})

	// VAAFetchAttempts counts Wormhole VAA fetch attempts, labeled by
	// outcome.
	VAAFetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relayer",
		Name:      "vaa_fetch_attempts_total",
		Help:      "Total Wormhole VAA fetch attempts, by outcome.",
	}, []string{"outcome"})
)
