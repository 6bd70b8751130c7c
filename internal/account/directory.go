package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/omega-realm/worldserver/internal/apperrors"
	"github.com/omega-realm/worldserver/internal/auth"
)

const (
	minUsernameLength = 3
	minPasswordLength = 3
)

// Directory is the account directory
type Directory struct {
	repo     Repository
	sessions SessionStore
	verifier CredentialVerifier
	tokens   *auth.Issuer
	now      func() time.Time
}

// NewDirectory wires a directory from its storage and credential backends
func NewDirectory(repo Repository, sessions SessionStore, verifier CredentialVerifier, tokens *auth.Issuer) *Directory {
	return &Directory{
		repo:     repo,
		sessions: sessions,
		verifier: verifier,
		tokens:   tokens,
		now:      time.Now,
	}
}

// SetClock overrides the time source for session bookkeeping
func (d *Directory) SetClock(now func() time.Time) {
	d.now = now
	d.tokens.SetClock(now)
}

// Register creates an account
func (d *Directory) Register(ctx context.Context, username, password, email string) error {
	if len(username) < minUsernameLength {
		return apperrors.New(apperrors.UsernameTooShort,
			fmt.Sprintf("Username must be at least %d characters", minUsernameLength))
	}
	if len(password) < minPasswordLength {
		return apperrors.New(apperrors.PasswordTooShort,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	hash, err := d.verifier.Hash(password)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "Failed to create account", err)
	}
	a := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    d.now(),
	}
	if err := d.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return apperrors.New(apperrors.DuplicateUsername, "Username already exists")
		}
		return apperrors.Wrap(apperrors.Internal, "Failed to create account", err)
	}

	log.Printf("[Account] New account registered: %s", username)
	return nil
}

// Login checks credentials and issues a new session token. Every login
// issues a distinct token; earlier tokens stay valid.
func (d *Directory) Login(ctx context.Context, username, password string) (string, error) {
	a, err := d.repo.Get(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", apperrors.Wrap(apperrors.Internal, "Failed to look up account", err)
	}
	if a == nil || !d.verifier.Verify(a.PasswordHash, password) {
		return "", apperrors.New(apperrors.InvalidCredentials, "Invalid username or password")
	}

	token, expires, err := d.tokens.Issue(username)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "Failed to create session", err)
	}
	s := Session{Token: token, Username: username, CreatedAt: d.now(), ExpiresAt: expires}
	if err := d.sessions.Put(ctx, s); err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "Failed to create session", err)
	}

	log.Printf("[Account] User logged in: %s (token %s...)", username, shortToken(token))
	return token, nil
}

// ResolveSession maps a token to its username. Unknown, revoked, expired
// and forged tokens are all reported as InvalidSession.
func (d *Directory) ResolveSession(ctx context.Context, token string) (string, error) {
	invalid := apperrors.New(apperrors.InvalidSession, "Invalid session")
	if token == "" {
		return "", invalid
	}
	claims, err := d.tokens.Validate(token)
	if err != nil {
		return "", invalid
	}
	s, err := d.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", invalid
		}
		return "", apperrors.Wrap(apperrors.Internal, "Failed to resolve session", err)
	}
	if s.Expired(d.now()) || s.Username != claims.Username {
		return "", invalid
	}
	return s.Username, nil
}

// Revoke deletes a session. Revoking an unknown token is not an error.
func (d *Directory) Revoke(ctx context.Context, token string) error {
	if err := d.sessions.Delete(ctx, token); err != nil && !errors.Is(err, ErrNotFound) {
		return apperrors.Wrap(apperrors.Internal, "Failed to revoke session", err)
	}
	return nil
}

// Exists reports whether username is registered
func (d *Directory) Exists(ctx context.Context, username string) (bool, error) {
	_, err := d.repo.Get(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Stats returns the account and live session counts
func (d *Directory) Stats(ctx context.Context) (accounts, sessions int, err error) {
	if accounts, err = d.repo.Count(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	if sessions, err = d.sessions.Count(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return accounts, sessions, nil
}

// ActiveUsers returns how many accounts hold at least one live session
func (d *Directory) ActiveUsers(ctx context.Context) (int, error) {
	n, err := d.sessions.ActiveUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return n, nil
}

func shortToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[len(token)-8:]
}
