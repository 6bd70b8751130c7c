package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omega-realm/worldserver/internal/account"
)

const (
	sessionPrefix      = "session:"
	userSessionsPrefix = "user_sessions:"
	activeUsersKey     = "active_users"
)

// SessionStore keeps account sessions as JSON values under session:<token>.
// Sessions with an expiry get a matching key TTL.
type SessionStore struct {
	client *Client
	now    func() time.Time
}

func NewSessionStore(c *Client) *SessionStore {
	return &SessionStore{client: c, now: time.Now}
}

func sessionKey(token string) string {
	return sessionPrefix + token
}

func userSessionsKey(username string) string {
	return userSessionsPrefix + username
}

// Put stores a session and marks its user active
func (s *SessionStore) Put(ctx context.Context, session account.Session) error {
	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.Token), sessionJSON, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.Username), session.Token)
	pipe.SAdd(ctx, activeUsersKey, session.Username)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

// Get returns the session for token, or account.ErrNotFound
func (s *SessionStore) Get(ctx context.Context, token string) (account.Session, error) {
	sessionJSON, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return account.Session{}, account.ErrNotFound
	}
	if err != nil {
		return account.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	var session account.Session
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return account.Session{}, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
// The user stays active while any other session of theirs is live.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if errors.Is(err, account.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(token))
	pipe.SRem(ctx, userSessionsKey(session.Username), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	_, err = s.refreshUser(ctx, session.Username)
	return err
}

// refreshUser prunes the user's expired tokens and drops the user from the
// active set once none are left. It reports whether the user is still active.
func (s *SessionStore) refreshUser(ctx context.Context, username string) (bool, error) {
	tokens, err := s.client.SMembers(ctx, userSessionsKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to get user sessions: %w", err)
	}

	live := 0
	for _, token := range tokens {
		n, err := s.client.Exists(ctx, sessionKey(token)).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check session: %w", err)
		}
		if n > 0 {
			live++
			continue
		}
		if err := s.client.SRem(ctx, userSessionsKey(username), token).Err(); err != nil {
			return false, fmt.Errorf("failed to prune session: %w", err)
		}
	}
	if live > 0 {
		return true, nil
	}

	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, activeUsersKey, username)
	pipe.Del(ctx, userSessionsKey(username))
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to remove active user: %w", err)
	}
	return false, nil
}

// Count scans for live session keys
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, sessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return n, nil
}

// ActiveUsers returns the number of users holding at least one live session.
// Users whose sessions all expired are removed from the set on the way.
func (s *SessionStore) ActiveUsers(ctx context.Context) (int, error) {
	users, err := s.client.SMembers(ctx, activeUsersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get active users: %w", err)
	}
	n := 0
	for _, username := range users {
		active, err := s.refreshUser(ctx, username)
		if err != nil {
			return 0, err
		}
		if active {
			n++
		}
	}
	return n, nil
}
