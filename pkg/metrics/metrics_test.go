package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestJobRuns_IncrementsByLabel(t *testing.T) {
	JobRuns.Reset()
	JobRuns.WithLabelValues("initialize", "ok").Inc()
	JobRuns.WithLabelValues("initialize", "ok").Inc()
	JobRuns.WithLabelValues("finalize", "error").Inc()

	require.Equal(t, float64(2), testutil.ToFloat64(JobRuns.WithLabelValues("initialize", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(JobRuns.WithLabelValues("finalize", "error")))
}

func TestDepositsByStatus_SetAndRead(t *testing.T) {
	DepositsByStatus.Reset()
	DepositsByStatus.WithLabelValues("base-mainnet", "QUEUED").Set(3)

	require.Equal(t, float64(3), testutil.ToFloat64(DepositsByStatus.WithLabelValues("base-mainnet", "QUEUED")))
}
