package domain

import (
	"encoding/json"
	"time"
)

// Event types emitted by the extension service.
const (
	EventHTTPRequest  = "http_request"
	EventAuthDenied   = "auth_denied"
	EventOtpDelivered = "otp_delivered"
)

// Event is one telemetry record for a handled callout. It is the Kafka message value and the OTel log body source.
type Event struct {
	ID            string          `json:"id"`
	EventType     string          `json:"eventType"`
	Source        string          `json:"source"`
	TenantID      string          `json:"tenantId,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	RequestID     string          `json:"requestId,omitempty"`
	Route         string          `json:"route,omitempty"`
	Status        int             `json:"status,omitempty"`
	DurationMs    int64           `json:"durationMs,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
