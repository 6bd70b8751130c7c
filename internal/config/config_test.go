package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 54555 || cfg.Addr() != ":54555" {
		t.Fatalf("addr = %s", cfg.Addr())
	}
	w := cfg.World()
	if w.TickInterval != 50*time.Millisecond || w.RegenInterval != 2*time.Second || w.RegenAmount != 5 {
		t.Fatalf("world = %+v", w)
	}
	if c := cfg.Combat(); c.RespawnDelay != 3*time.Second || c.CritChance != 0.15 {
		t.Fatalf("combat = %+v", c)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.PasswordScheme != "bcrypt" {
		t.Fatalf("session = %s %s", cfg.SessionTTL, cfg.PasswordScheme)
	}
	if cfg.SessionBackend != BackendMemory || cfg.AccountBackend != BackendMemory {
		t.Fatalf("backends = %s %s", cfg.SessionBackend, cfg.AccountBackend)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != "6379" || cfg.Redis.PoolSize != 10 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if cfg.Database.Port != "5432" || cfg.Database.MaxOpenConns != 25 || cfg.Database.Path != "worldserver.db" {
		t.Fatalf("database = %+v", cfg.Database)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(dotenv, []byte("MANA_REGEN_AMOUNT=7\nPORT=1111\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MANA_REGEN_AMOUNT") })
	// the process environment wins over the file
	t.Setenv("PORT", "9000")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("ACCOUNT_BACKEND", "sqlite")
	t.Setenv("RESPAWN_DELAY", "500ms")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(dotenv)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Fatalf("addr = %s", cfg.Addr())
	}
	if cfg.RegenAmount != 7 {
		t.Fatalf("regen amount = %d, want value from file", cfg.RegenAmount)
	}
	if cfg.Combat().RespawnDelay != 500*time.Millisecond {
		t.Fatalf("respawn = %s", cfg.Combat().RespawnDelay)
	}
	if string(cfg.Secret()) != "s3cret" || cfg.Redis.DB != 3 {
		t.Fatalf("secret/db = %q %d", cfg.Secret(), cfg.Redis.DB)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("ACCOUNT_BACKEND", "mongo")
	if _, err := Load(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Fatal("accepted unknown backend")
	}
}

func TestLoadRejectsDisabledLoops(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WORLD_TICK_INTERVAL", "0s"},
		{"WORLD_TICK_INTERVAL", "-50ms"},
		{"MANA_REGEN_INTERVAL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(filepath.Join(t.TempDir(), "none")); err == nil {
				t.Fatalf("accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestRandomSecret(t *testing.T) {
	var cfg Config
	a, b := cfg.Secret(), cfg.Secret()
	if len(a) != 32 || string(a) == string(b) {
		t.Fatal("random secrets should be 32 bytes and distinct")
	}
}
