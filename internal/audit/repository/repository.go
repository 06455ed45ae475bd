package repository

import (
	"context"

	"custom-auth-extension/backend/internal/audit/domain"
)

// Repository persists audit records.
type Repository interface {
	Create(ctx context.Context, r *domain.Record) error
}
