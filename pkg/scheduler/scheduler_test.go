package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	require.Equal(t, 15*time.Second, cfg.InitializeInterval)
	require.Equal(t, 15*time.Second, cfg.FinalizeInterval)
	require.Equal(t, 30*time.Second, cfg.WormholeBridgeInterval)
	require.Equal(t, 5*time.Minute, cfg.PastDepositInterval)
	require.Equal(t, 30*time.Second, cfg.RedemptionInterval)
	require.Equal(t, time.Hour, cfg.CleanupInterval)
}

func TestConfig_WithDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{InitializeInterval: 5 * time.Second}.withDefaults()
	require.Equal(t, 5*time.Second, cfg.InitializeInterval)
}

// TestTick_SkipsOverlappingRun verifies that a slow tick causes the next
// ticker fire to be skipped rather than queued, matching the scheduler's
// skip-if-busy contract.
func TestTick_SkipsOverlappingRun(t *testing.T) {
	s := &Scheduler{stopCh: make(chan struct{})}
	s.doneWG.Add(1)

	var mu sync.Mutex
	runs := 0
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	fn := func(ctx context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.tick(ctx, "test-job", 10*time.Millisecond, fn)

	<-started // first run has started and is blocked on release

	// Give the ticker several chances to fire while the first run is still
	// in flight; none of them should start a second concurrent run.
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	require.Equal(t, 1, runs)
	mu.Unlock()

	close(release)
	close(s.stopCh)
	s.doneWG.Wait()
}

func TestTick_StopsOnStopChannel(t *testing.T) {
	s := &Scheduler{stopCh: make(chan struct{})}
	s.doneWG.Add(1)

	done := make(chan struct{})
	go func() {
		s.tick(context.Background(), "job", time.Hour, func(context.Context) {})
		close(done)
	}()

	close(s.stopCh)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick did not return after stopCh closed")
	}
	s.doneWG.Wait()
}
