package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"carbonlens/web/models"
)

type SignupStore struct {
	pool *pgxpool.Pool
}

func NewSignupStore(pool *pgxpool.Pool) *SignupStore { return &SignupStore{pool: pool} }

func (s *SignupStore) RecordAttempt(ctx context.Context, a models.SignupAttempt) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO signup_attempts(email, company_name, tier, action, price, currency, succeeded, stage, error, session_id, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.Email, a.CompanyName, string(a.Tier), a.Action, a.Price, a.Currency, a.Succeeded, a.Stage, a.Error, a.SessionID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert signup attempt: %w", err)
	}
	return nil
}

// ListAttempts returns attempts newest first.
func (s *SignupStore) ListAttempts(ctx context.Context, limit, offset int) ([]models.SignupAttempt, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, email, company_name, tier, action, price::float8, currency, succeeded, stage, error, session_id, created_at
        FROM signup_attempts
        ORDER BY created_at DESC, id DESC
        LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list signup attempts: %w", err)
	}
	defer rows.Close()
	out := []models.SignupAttempt{}
	for rows.Next() {
		var a models.SignupAttempt
		var tier string
		if err := rows.Scan(&a.ID, &a.Email, &a.CompanyName, &tier, &a.Action, &a.Price, &a.Currency, &a.Succeeded, &a.Stage, &a.Error, &a.SessionID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signup attempt: %w", err)
		}
		a.Tier = models.Tier(tier)
		out = append(out, a)
	}
	return out, rows.Err()
}
