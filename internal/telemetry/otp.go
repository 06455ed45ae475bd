package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	extdomain "custom-auth-extension/backend/internal/extension/domain"
	"custom-auth-extension/backend/internal/telemetry/domain"
)

// OtpSource is the telemetry source of otp_delivered events.
const OtpSource = "otp_notifier"

type otpMetadata struct {
	IdentifierDomain string `json:"identifier_domain,omitempty"`
	ClientIP         string `json:"client_ip,omitempty"`
}

// OtpEvents turns each OTP notification into an otp_delivered event.
// The code and the full identifier are never emitted.
type OtpEvents struct {
	Emitter EventEmitter
	Now     func() time.Time
}

// NotifyOtp emits one event. It returns nil when no emitter is configured.
func (o OtpEvents) NotifyOtp(ctx context.Context, n extdomain.OtpNotification) error {
	if o.Emitter == nil {
		return nil
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	meta, err := json.Marshal(otpMetadata{
		IdentifierDomain: identifierDomain(n.Identifier),
		ClientIP:         n.ClientIP,
	})
	if err != nil {
		return err
	}
	return o.Emitter.Emit(ctx, &domain.Event{
		ID:            uuid.NewString(),
		EventType:     domain.EventOtpDelivered,
		Source:        OtpSource,
		TenantID:      n.TenantID,
		CorrelationID: n.CorrelationID,
		Metadata:      meta,
		CreatedAt:     now().UTC(),
	})
}

// identifierDomain returns the part after @ for email identifiers, else "".
func identifierDomain(identifier string) string {
	if i := strings.LastIndex(identifier, "@"); i >= 0 && i < len(identifier)-1 {
		return strings.ToLower(identifier[i+1:])
	}
	return ""
}
