package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"fluxgallery/internal/domain"
	"fluxgallery/internal/infra"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
// The pipeline only reads user records and adjusts the integer credit
// balance; account lifecycle is handled elsewhere.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// GetByEmail fetches a user record by email address.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, `
SELECT id, email, credits, created_at, updated_at
FROM users
WHERE email = $1;
`, email)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Credits, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// AdjustCredits applies delta to the balance and returns the new value.
// Negative deltas debit, positive deltas refund.
func (r *UserRepositoryPG) AdjustCredits(ctx context.Context, userID string, delta int) (int, error) {
	row := r.sql.QueryRow(ctx, `
UPDATE users
SET credits = credits + $2,
    updated_at = NOW()
WHERE id = $1
RETURNING credits;
`, userID, delta)

	var balance int
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
