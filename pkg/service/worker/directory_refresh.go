package worker

import (
	"context"
	"time"

	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

// DirectoryRefresher re-warms workspace user directories
type DirectoryRefresher interface {
	RefreshWorkspaceDirectories(ctx context.Context) error
}

// DirectoryRefreshWorker keeps workspace user directories warm so
// match attempts do not pay a directory-listing round trip.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type DirectoryRefreshWorker struct {
	refresher DirectoryRefresher
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewDirectoryRefreshWorker creates a worker refreshing directories at
// the given interval
func NewDirectoryRefreshWorker(refresher DirectoryRefresher, interval time.Duration) *DirectoryRefreshWorker {
	return &DirectoryRefreshWorker{
		refresher: refresher,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background refresh loop
// - Initial sync and periodic refresh both run in a background goroutine
// - Does not block server startup
func (w *DirectoryRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("directory refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *DirectoryRefreshWorker) Stop() {
	logging.Default().Info("directory refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("directory refresh worker stopped")
}

func (w *DirectoryRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.refresh(ctx); err != nil {
		logging.Default().Error("initial directory refresh failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				logging.Default().Error("directory refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("directory refresh worker context cancelled")
			return
		}
	}
}

func (w *DirectoryRefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()

	if err := w.refresher.RefreshWorkspaceDirectories(ctx); err != nil {
		return err
	}

	logging.Default().Info("directory refresh completed",
		"duration", time.Since(startTime).String())
	return nil
}
