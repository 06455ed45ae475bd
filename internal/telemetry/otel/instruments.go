package otel

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instruments are the metrics recorded by the HTTP layer.
type Instruments struct {
	// AuthDecisions counts gate outcomes by gate and reason.
	AuthDecisions metric.Int64Counter
	// RequestDuration records handled request latency in seconds by route and status.
	RequestDuration metric.Float64Histogram
	// OtpNotifyFailures counts OTP notifier errors and panics.
	OtpNotifyFailures metric.Int64Counter
}

// NewInstruments creates the instruments on meter. A nil meter yields no-op instruments.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(instrumentationName)
	}
	auth, err := meter.Int64Counter("authext.auth.decisions",
		metric.WithDescription("Authorization gate decisions"))
	if err != nil {
		return nil, err
	}
	dur, err := meter.Float64Histogram("authext.http.request.duration",
		metric.WithDescription("Duration of handled extension callouts"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	otp, err := meter.Int64Counter("authext.otp.notify.failures",
		metric.WithDescription("OTP notifier failures"))
	if err != nil {
		return nil, err
	}
	return &Instruments{AuthDecisions: auth, RequestDuration: dur, OtpNotifyFailures: otp}, nil
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	in, _ := NewInstruments(nil)
	return in
}
