package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureSchema creates the scheduler tables if they are missing. Safe to call
// at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ddls := []string{
		`CREATE TABLE IF NOT EXISTS social_credentials (
			id BIGSERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			access_token TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT ux_social_credentials_owner_platform UNIQUE (owner_id, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS scheduled_posts (
			id BIGSERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			content TEXT NOT NULL,
			media_url TEXT,
			scheduled_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			failure_reason TEXT,
			external_ref TEXT,
			claimed_batch_id TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`ALTER TABLE scheduled_posts ADD COLUMN IF NOT EXISTS claimed_batch_id TEXT`,
		`CREATE INDEX IF NOT EXISTS ix_scheduled_posts_due ON scheduled_posts (status, scheduled_at)`,
		`CREATE TABLE IF NOT EXISTS public.user (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			user_name TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, ddl := range ddls {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
