package domain

import "time"

// Audit actions recorded by the extension handlers.
const (
	ActionOtpSend = "otp_send"
)

// Record is one audit entry.
type Record struct {
	ID            string
	TenantID      string
	CorrelationID string
	Action        string
	Resource      string
	Subject       string
	IP            string
	Metadata      string
	CreatedAt     time.Time
}
