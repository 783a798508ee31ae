package model

import (
	"time"
)

type User struct {
	ID                   string     `db:"id" json:"id"`
	Email                string     `db:"email" json:"email"`
	Plan                 Plan       `db:"plan" json:"plan"`
	StripeCustomerID     *string    `db:"stripe_customer_id" json:"-"`
	StripeSubscriptionID *string    `db:"stripe_subscription_id" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
	DisabledAt           *time.Time `db:"disabled_at" json:"disabledAt,omitempty"`
}

type CreateUserParams struct {
	Email string
	Plan  Plan
}

// AuthToken is an opaque API credential minted out-of-band. Only the
// SHA-256 hash is stored; the middleware resolves hash -> user on every request.
type AuthToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	TokenHash string    `db:"token_hash" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateAuthTokenParams struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}
