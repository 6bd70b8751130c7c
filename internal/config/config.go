// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/omega-realm/worldserver/internal/combat"
	"github.com/omega-realm/worldserver/internal/database"
	"github.com/omega-realm/worldserver/internal/redis"
	"github.com/omega-realm/worldserver/internal/world"
)

// Backend names
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is the full server configuration
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"54555"`

	TickInterval   time.Duration `env:"WORLD_TICK_INTERVAL" envDefault:"50ms"`
	RegenInterval  time.Duration `env:"MANA_REGEN_INTERVAL" envDefault:"2s"`
	RegenAmount    int           `env:"MANA_REGEN_AMOUNT" envDefault:"5"`
	RespawnDelay   time.Duration `env:"RESPAWN_DELAY" envDefault:"3s"`
	StatusInterval time.Duration `env:"STATUS_INTERVAL" envDefault:"10s"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	PasswordScheme string        `env:"PASSWORD_SCHEME" envDefault:"bcrypt"`

	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`
	AccountBackend string `env:"ACCOUNT_BACKEND" envDefault:"memory"`

	SeedTestAccount bool `env:"SEED_TEST_ACCOUNT" envDefault:"false"`

	Redis    redis.Config
	Database database.Config
}

// Load reads an optional .env file and then the process environment
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.AccountBackend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("invalid ACCOUNT_BACKEND %q", c.AccountBackend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("WORLD_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.RegenInterval <= 0 {
		return fmt.Errorf("MANA_REGEN_INTERVAL must be positive, got %s", c.RegenInterval)
	}
	return nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Secret returns the session signing key. Without SESSION_SECRET a random
// key is generated, so tokens do not survive a restart.
func (c *Config) Secret() []byte {
	if c.SessionSecret != "" {
		return []byte(c.SessionSecret)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("failed to generate session secret: %v", err))
	}
	log.Println("[Config] SESSION_SECRET not set, using a random key")
	return key
}

// World returns the broadcaster cadences
func (c *Config) World() world.Config {
	return world.Config{
		TickInterval:   c.TickInterval,
		RegenInterval:  c.RegenInterval,
		RegenAmount:    c.RegenAmount,
		StatusInterval: c.StatusInterval,
	}
}

// Combat returns the combat constants with the configured respawn delay
func (c *Config) Combat() combat.Config {
	cfg := combat.DefaultConfig()
	cfg.RespawnDelay = c.RespawnDelay
	return cfg
}
