package telemetry

import (
	"context"
	"errors"

	"custom-auth-extension/backend/internal/telemetry/domain"
)

// EventEmitter emits telemetry events (e.g. to Kafka or OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}

// Fanout emits each event to every non-nil emitter and joins their errors.
type Fanout []EventEmitter

// Emit satisfies EventEmitter.
func (f Fanout) Emit(ctx context.Context, event *domain.Event) error {
	var errs []error
	for _, e := range f {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
