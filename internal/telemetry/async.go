package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"custom-auth-extension/backend/internal/telemetry/domain"
)

// emitTimeout is the max time allowed for a single background task. Used by Go and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before shutting down OTel providers,
// so in-flight background work has time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

var inflight sync.WaitGroup

// Go runs fn in a goroutine detached from the caller's cancellation, bounded by emitTimeout.
// Errors and panics are logged with label and never reach the caller.
func Go(ctx context.Context, label string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	bg := context.WithoutCancel(ctx)
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("%s: panic in background task: %v", label, r)
			}
		}()
		runCtx, cancel := context.WithTimeout(bg, emitTimeout)
		defer cancel()
		if err := fn(runCtx); err != nil {
			log.Printf("%s: background task failed: %v", label, err)
		}
	}()
}

// Drain blocks until every task started by Go has returned or ctx is done.
func Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EmitAsync runs Emit in the background so the request is not blocked.
// Use from request handlers for fire-and-forget, best-effort telemetry; errors are logged.
//
// emitter and event may be nil; EmitAsync returns immediately without starting a goroutine.
func EmitAsync(emitter EventEmitter, ctx context.Context, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	Go(ctx, "telemetry", func(ctx context.Context) error {
		return emitter.Emit(ctx, event)
	})
}
