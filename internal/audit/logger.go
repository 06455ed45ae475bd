package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"custom-auth-extension/backend/internal/audit/domain"
	auditrepo "custom-auth-extension/backend/internal/audit/repository"
	extdomain "custom-auth-extension/backend/internal/extension/domain"
)

// ErrNoRepository is returned by Write when the logger has no repository.
var ErrNoRepository = errors.New("audit: no repository configured")

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Logger writes audit records to the audit repository, using an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns a Logger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// Write fills in ID, IP and CreatedAt when unset and persists rec.
func (l *Logger) Write(ctx context.Context, rec *domain.Record) error {
	if l == nil || l.repo == nil {
		return ErrNoRepository
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.IP == "" {
		rec.IP = "unknown"
		if l.ipExtractor != nil {
			if ip := l.ipExtractor(ctx); ip != "" {
				rec.IP = ip
			}
		}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return l.repo.Create(ctx, rec)
}

// NotifyOtp records an OTP delivery request. The code goes into Metadata and the destination into Subject.
func (l *Logger) NotifyOtp(ctx context.Context, n extdomain.OtpNotification) error {
	return l.Write(ctx, &domain.Record{
		TenantID:      n.TenantID,
		CorrelationID: n.CorrelationID,
		Action:        domain.ActionOtpSend,
		Resource:      "otp",
		Subject:       n.Identifier,
		IP:            n.ClientIP,
		Metadata:      n.Code,
	})
}
