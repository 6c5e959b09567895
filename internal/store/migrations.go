package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for the history tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS invocations (
		id         TEXT PRIMARY KEY,
		tool       TEXT NOT NULL,
		strategy   TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		exit_info  TEXT NOT NULL DEFAULT '',
		stdout     TEXT NOT NULL DEFAULT '',
		stderr     TEXT NOT NULL DEFAULT '',
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_invocations_tool ON invocations(tool)`,
	`CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at)`,
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
