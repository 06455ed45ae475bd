package repository

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"custom-auth-extension/backend/internal/audit/domain"
)

// ConsoleRepository writes audit records as log lines. It is the default when no database is configured.
type ConsoleRepository struct {
	mu     sync.Mutex
	logger *log.Logger
}

// NewConsoleRepository returns a repository writing to w. A nil w uses the standard logger.
func NewConsoleRepository(w io.Writer) *ConsoleRepository {
	if w == nil {
		return &ConsoleRepository{logger: log.Default()}
	}
	return &ConsoleRepository{logger: log.New(w, "", log.LstdFlags)}
}

// Create satisfies Repository.
func (r *ConsoleRepository) Create(ctx context.Context, rec *domain.Record) error {
	if rec == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logger.Output(2, Line(rec))
}

// Line renders rec the way the console repository prints it.
func Line(rec *domain.Record) string {
	if rec.Action == domain.ActionOtpSend {
		return fmt.Sprintf("OTP %s would be sent to %s", rec.Metadata, rec.Subject)
	}
	return fmt.Sprintf("audit: %s %s tenant=%s correlation=%s subject=%s ip=%s",
		rec.Action, rec.Resource, rec.TenantID, rec.CorrelationID, rec.Subject, rec.IP)
}
