package click

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultInsertTimeout = 5 * time.Second

// Recorder persists click events without ever surfacing a failure to
// the redirect path. Each insert runs in its own goroutine against a
// detached context, so a client disconnect cannot abandon it midway.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

// NewRecorder creates a Recorder writing to store. A nil store disables
// recording entirely: Record becomes a no-op.
func NewRecorder(store Store, logger *slog.Logger, timeout time.Duration) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultInsertTimeout
	}
	return &Recorder{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

// Record stamps the event with the current UTC time, dispatches it for
// insertion, and returns immediately. Failures are logged and
// swallowed; Record never blocks on storage and never panics.
func (r *Recorder) Record(slug, destination, clientAddr, userAgent string) {
	if r.store == nil {
		return
	}

	ev := Event{
		Time:        time.Now().UTC(),
		Slug:        slug,
		Destination: destination,
		ClientAddr:  clientAddr,
		UserAgent:   userAgent,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("click insert panicked", "panic", p, "slug", ev.Slug)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.Insert(ctx, ev); err != nil {
			r.logger.Error("click insert failed", "error", err, "slug", ev.Slug)
		}
	}()
}

// Drain blocks until all in-flight insertions finish or ctx expires.
func (r *Recorder) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
