// Package account is the account directory: registration, credential
// checks and session tokens.
package account

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories and session stores for missing keys
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by Repository.Create when the username is taken
	ErrDuplicate = errors.New("already exists")
)

// Account is a registered user
type Account struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session maps a token to the account it was issued for
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is zero for sessions that never expire.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Repository stores accounts. Create must be an atomic insert-if-absent.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, username string) (*Account, error)
	Count(ctx context.Context) (int, error)
}

// SessionStore stores sessions by token
type SessionStore interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	Count(ctx context.Context) (int, error)
	// ActiveUsers counts distinct usernames with a live session.
	ActiveUsers(ctx context.Context) (int, error)
}
