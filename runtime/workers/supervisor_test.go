package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type panickyWorker struct {
	runs *atomic.Int32
}

func (w panickyWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	panic("boom")
}

type blockedWorker struct{}

func (w blockedWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func TestSupervisor_Restarts_Panicked_Worker(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := NewSupervisor(log, 10*time.Millisecond)

	var runs atomic.Int32
	sup.Add(panickyWorker{runs: &runs})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	// Then the worker is restarted after each panic
	req.Eventually(func() bool { return runs.Load() >= 3 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not stop after cancellation")
	}
}

func TestSupervisor_Stop_Releases_Blocked_Workers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := NewSupervisor(log, 10*time.Millisecond)
	sup.Add(blockedWorker{})

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Let the worker park on its context before stopping
	time.Sleep(20 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("supervisor did not drain its workers")
	}
}
