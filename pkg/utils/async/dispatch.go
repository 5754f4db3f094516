package async

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
)

var inflight sync.WaitGroup

// Dispatch runs handler in its own goroutine on a background context that
// keeps the caller's logger, so the work outlives the request that started it.
// Errors and panics are logged.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}

// Wait blocks until every dispatched handler has returned or ctx is done.
// It is called on shutdown and from tests.
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async handlers still running")
	}
}
