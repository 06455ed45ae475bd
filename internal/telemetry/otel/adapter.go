package otel

import (
	"context"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"custom-auth-extension/backend/internal/telemetry"
	"custom-auth-extension/backend/internal/telemetry/domain"
)

const instrumentationName = "authext.telemetry"

// RecordEmitter is the part of an OTel logger the event emitter needs.
type RecordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via provider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(instrumentationName))
}

// NewEventEmitterWithLogger returns an EventEmitter that writes records to logger.
func NewEventEmitterWithLogger(logger RecordEmitter) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.Event) error { return nil }

type otelEmitter struct {
	logger RecordEmitter
}

// Emit converts the event to an OTel log record. Metadata becomes the body; identifying fields become attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetTimestamp(event.CreatedAt)
	if event.CreatedAt.IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetEventName(event.EventType)
	if len(event.Metadata) > 0 {
		rec.SetBody(otellog.BytesValue(event.Metadata))
	}
	addString := func(key, val string) {
		if val != "" {
			rec.AddAttributes(otellog.String(key, val))
		}
	}
	addString("event_id", event.ID)
	addString("event_type", event.EventType)
	addString("source", event.Source)
	addString("tenant_id", event.TenantID)
	addString("correlation_id", event.CorrelationID)
	addString("request_id", event.RequestID)
	addString("http.route", event.Route)
	if event.Status != 0 {
		addString("http.response.status_code", strconv.Itoa(event.Status))
		if event.Status >= 500 {
			rec.SetSeverity(otellog.SeverityError)
		} else if event.Status >= 400 {
			rec.SetSeverity(otellog.SeverityWarn)
		} else {
			rec.SetSeverity(otellog.SeverityInfo)
		}
	}
	if event.DurationMs > 0 {
		rec.AddAttributes(otellog.Int64("duration_ms", event.DurationMs))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
