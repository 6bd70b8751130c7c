package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/omega-realm/worldserver/internal/account"
	"github.com/omega-realm/worldserver/internal/auth"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), Config{
		Host:        mr.Host(),
		Port:        mr.Port(),
		PoolSize:    2,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewClientUnreachable(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Host: "127.0.0.1", Port: "1", DialTimeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("connected to a closed port")
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	store := NewSessionStore(c)
	now := time.Now()

	long := account.Session{Token: "tok-a", Username: "alice", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	forever := account.Session{Token: "tok-b", Username: "bob", CreatedAt: now}
	for _, s := range []account.Session{long, forever} {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := store.Get(ctx, "tok-a")
	if err != nil || got.Username != "alice" || !got.ExpiresAt.Equal(long.ExpiresAt) {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if ttl := mr.TTL(sessionKey("tok-a")); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("ttl = %s", ttl)
	}
	if ttl := mr.TTL(sessionKey("tok-b")); ttl != 0 {
		t.Fatalf("non-expiring session got ttl %s", ttl)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Fatalf("Count = %d", n)
	}
	if n, _ := store.ActiveUsers(ctx); n != 2 {
		t.Fatalf("ActiveUsers = %d", n)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get(ctx, "tok-a"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expired Get err = %v", err)
	}

	if err := store.Delete(ctx, "tok-b"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "tok-b"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("Count after delete = %d", n)
	}
	if n, _ := store.ActiveUsers(ctx); n != 0 {
		t.Fatalf("ActiveUsers after expiry and delete = %d", n)
	}
}

func TestActiveUsersTracksLastSession(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	store := NewSessionStore(c)
	now := time.Now()

	for _, tok := range []string{"tok-1", "tok-2"} {
		if err := store.Put(ctx, account.Session{Token: tok, Username: "alice", CreatedAt: now}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if n, _ := store.ActiveUsers(ctx); n != 1 {
		t.Fatalf("ActiveUsers = %d, want 1", n)
	}

	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.ActiveUsers(ctx); n != 1 {
		t.Fatalf("ActiveUsers with one session left = %d, want 1", n)
	}

	if err := store.Delete(ctx, "tok-2"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.ActiveUsers(ctx); n != 0 {
		t.Fatalf("ActiveUsers after last delete = %d, want 0", n)
	}
}

func TestSessionStoreWithDirectory(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	dir := account.NewDirectory(account.NewMemoryRepository(), NewSessionStore(c), account.PlaintextVerifier{}, auth.NewIssuer([]byte("redis-test"), time.Hour))
	if err := dir.Register(ctx, "alice", "secret", ""); err != nil {
		t.Fatal(err)
	}
	token, err := dir.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if user, err := dir.ResolveSession(ctx, token); err != nil || user != "alice" {
		t.Fatalf("ResolveSession = %q, %v", user, err)
	}
	if err := dir.Revoke(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := dir.ResolveSession(ctx, token); err == nil {
		t.Fatal("revoked session still resolves")
	}
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	board := NewLeaderboard(c)

	board.RecordKill(ctx, 1001, 1002)
	board.RecordKill(ctx, 1001, 1003)
	board.RecordKill(ctx, 1003, 1002)

	top, err := board.TopKillers(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].CharacterID != 1001 || top[0].Score != 2 || top[0].Rank != 1 {
		t.Fatalf("TopKillers = %+v", top)
	}
	deaths, _ := board.TopDeaths(ctx, 0)
	if len(deaths) != 2 || deaths[0].CharacterID != 1002 {
		t.Fatalf("TopDeaths = %+v", deaths)
	}

	s, err := board.Stats(ctx, 1003)
	if err != nil || s.PvPKills != 1 || s.Deaths != 1 {
		t.Fatalf("Stats = %+v, %v", s, err)
	}
	if s, err := board.Stats(ctx, 4242); err != nil || s.PvPKills != 0 || s.Deaths != 0 {
		t.Fatalf("unknown Stats = %+v, %v", s, err)
	}
}
