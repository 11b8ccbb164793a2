package domain

import (
	"context"
	"time"
)

// User represents an account record in the external user store. The pipeline
// reads it and adjusts the credit balance; account management itself lives
// elsewhere.
type User struct {
	ID        string
	Email     string
	Credits   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRepository is the thin credit surface the pipeline consumes.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	// AdjustCredits applies an integer delta to the balance and returns
	// the new value. Callers use it for both debit and refund.
	AdjustCredits(ctx context.Context, userID string, delta int) (int, error)
}
