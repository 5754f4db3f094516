package worker

import (
	"context"
	"time"

	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
)

// Reloader rebuilds the knowledge index in place
type Reloader interface {
	ReloadKnowledge(ctx context.Context) error
}

// KnowledgeReloadWorker periodically rebuilds the knowledge index so edits to
// the spreadsheet show up without a restart. The index is built once at
// startup by the caller; the worker only handles later refreshes.
type KnowledgeReloadWorker struct {
	reloader Reloader
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewKnowledgeReloadWorker creates a worker that reloads every interval
func NewKnowledgeReloadWorker(reloader Reloader, interval time.Duration) *KnowledgeReloadWorker {
	return &KnowledgeReloadWorker{
		reloader: reloader,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop without blocking
func (w *KnowledgeReloadWorker) Start(ctx context.Context) error {
	logging.Default().Info("Knowledge reload worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *KnowledgeReloadWorker) Stop() {
	logging.Default().Info("Knowledge reload worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Knowledge reload worker stopped")
}

func (w *KnowledgeReloadWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			started := time.Now()
			if err := w.reloader.ReloadKnowledge(ctx); err != nil {
				// an unreadable source leaves an empty index; other failures keep the previous one
				logging.Default().Error("Knowledge reload failed (will retry next interval)",
					"error", err.Error())
				continue
			}
			logging.Default().Debug("Knowledge reloaded", "duration", time.Since(started).String())

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Knowledge reload worker context cancelled")
			return
		}
	}
}
