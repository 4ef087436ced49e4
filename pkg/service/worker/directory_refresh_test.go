package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/service/worker"
)

type countingRefresher struct {
	calls atomic.Int64
}

func (c *countingRefresher) RefreshWorkspaceDirectories(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestDirectoryRefreshWorker(t *testing.T) {
	refresher := &countingRefresher{}
	w := worker.NewDirectoryRefreshWorker(refresher, 20*time.Millisecond)

	gt.NoError(t, w.Start(context.Background()))

	// Initial sync plus at least one tick
	deadline := time.Now().Add(2 * time.Second)
	for refresher.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("worker did not run enough refresh cycles")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.Stop()
	stopped := refresher.calls.Load()

	time.Sleep(60 * time.Millisecond)
	gt.Number(t, refresher.calls.Load()).Equal(stopped)
}

func TestDirectoryRefreshWorkerContextCancel(t *testing.T) {
	refresher := &countingRefresher{}
	w := worker.NewDirectoryRefreshWorker(refresher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	gt.NoError(t, w.Start(ctx))
	cancel()

	// The run loop exits on context cancellation; Stop must not block
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Stop()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after context cancellation")
	}
}
