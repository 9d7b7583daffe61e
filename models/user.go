package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account holder with a token balance
type User struct {
	ID           int64           `db:"id"`
	Email        string          `db:"email"`
	Username     string          `db:"username"`
	PasswordHash *string         `db:"password_hash"`
	ExternalID   *string         `db:"external_id"`
	Balance      decimal.Decimal `db:"balance"`
	Reputation   int             `db:"reputation"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// IsFederated reports whether the user signed up through an external identity
// provider rather than with a local password.
func (u *User) IsFederated() bool {
	return u.ExternalID != nil && *u.ExternalID != ""
}
