package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"custom-auth-extension/backend/internal/telemetry/domain"
)

type fakeWriter struct {
	msgs     []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaProducer_EmptyConfig(t *testing.T) {
	if p := NewKafkaProducer(nil, "topic"); p != nil {
		t.Error("expected nil producer without brokers")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("expected nil producer without topic")
	}
}

func TestKafkaProducer_NilIsNoop(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), &domain.Event{}); err != nil {
		t.Errorf("Emit on nil producer: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close on nil producer: %v", err)
	}
}

func TestKafkaProducer_EmitKeyedByTenant(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "authext-telemetry"}
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event := &domain.Event{ID: "e1", EventType: domain.EventHTTPRequest, TenantID: "tenant-1", CreatedAt: created}

	if err := p.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "tenant-1" {
		t.Errorf("key = %q, want tenant-1", msg.Key)
	}
	if !msg.Time.Equal(created) {
		t.Errorf("time = %v, want %v", msg.Time, created)
	}
	var got domain.Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("value is not an event: %v", err)
	}
	if got.ID != "e1" || got.EventType != domain.EventHTTPRequest {
		t.Errorf("decoded event = %+v", got)
	}
}

func TestKafkaProducer_EmitWithoutTenantHasNoKey(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "t"}
	if err := p.Emit(context.Background(), &domain.Event{EventType: "x"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if w.msgs[0].Key != nil {
		t.Errorf("key = %q, want nil", w.msgs[0].Key)
	}
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{writeErr: errors.New("leader not available")}
	p := &KafkaProducer{writer: w, topic: "t"}
	if err := p.Emit(context.Background(), &domain.Event{}); err == nil {
		t.Error("expected write error")
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close err=%v closed=%v", err, w.closed)
	}
}
