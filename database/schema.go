package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the audit tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signup_attempts (
            id BIGSERIAL PRIMARY KEY,
            email TEXT NOT NULL,
            company_name TEXT NOT NULL DEFAULT '',
            tier TEXT NOT NULL,
            action TEXT NOT NULL,
            price NUMERIC NOT NULL DEFAULT 0,
            currency TEXT NOT NULL DEFAULT '',
            succeeded BOOLEAN NOT NULL,
            stage TEXT NOT NULL DEFAULT '',
            error TEXT NOT NULL DEFAULT '',
            session_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS signup_attempts_created_idx ON signup_attempts(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS signup_attempts_email_idx ON signup_attempts(email)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
