package db

import "embed"

// MigrationFS embeds the SQL migrations for the audit store. Applied by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
