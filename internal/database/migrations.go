package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []struct {
	name string
	sql  string
}{
	{"favorites", `
		CREATE TABLE IF NOT EXISTS favorites (
			owner_id TEXT NOT NULL,
			spec_id TEXT NOT NULL,
			spec JSONB NOT NULL,
			selected_color TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (owner_id, spec_id)
		)
	`},
	{"idx_favorites_owner_added", `
		CREATE INDEX IF NOT EXISTS idx_favorites_owner_added
		ON favorites (owner_id, added_at DESC)
	`},
	{"warm_failures", `
		CREATE TABLE IF NOT EXISTS warm_failures (
			term TEXT PRIMARY KEY,
			error_type VARCHAR(20) NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			attempts INTEGER NOT NULL DEFAULT 1,
			last_attempt TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			next_attempt TIMESTAMPTZ,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"idx_warm_failures_pending", `
		CREATE INDEX IF NOT EXISTS idx_warm_failures_pending
		ON warm_failures (next_attempt)
		WHERE resolved = FALSE
	`},
}

// RunMigrations creates the favorites and warmer tables when missing
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.name, err)
		}
	}
	return nil
}
