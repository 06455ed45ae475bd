package repository

import (
	"context"
	"database/sql"
	"errors"

	"custom-auth-extension/backend/internal/audit/domain"
)

// PostgresRepository stores audit records in the audit_records table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const insertRecord = `INSERT INTO audit_records
	(id, tenant_id, correlation_id, action, resource, subject, ip, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Create persists rec. rec must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) error {
	if rec == nil {
		return nil
	}
	if rec.ID == "" {
		return errors.New("audit: record id is required")
	}
	_, err := r.db.ExecContext(ctx, insertRecord,
		rec.ID, nullable(rec.TenantID), nullable(rec.CorrelationID), rec.Action, rec.Resource,
		nullable(rec.Subject), rec.IP, nullable(rec.Metadata), rec.CreatedAt)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
