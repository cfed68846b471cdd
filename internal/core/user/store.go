package user

import (
	"context"
	"time"
)

// Repository defines persistence operations for user accounts.
type Repository interface {
	Insert(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	UpdateShowExplicit(ctx context.Context, id int64, showExplicit bool) (*User, error)
}

// SessionStore holds refresh-token sessions in volatile storage. A session
// maps an opaque token to the user it authenticates; expiry is enforced by
// the store's TTL, not application code.
type SessionStore interface {
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	// Get resolves a token to its user ID. An unknown or expired token
	// yields UNAUTHORIZED.
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}
