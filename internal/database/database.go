// Package database keeps durable accounts in PostgreSQL or SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Drivers
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	driver string
}

// Config holds database configuration
type Config struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"omega"`
	Password        string        `env:"DB_PASSWORD" envDefault:"omega_password"`
	DBName          string        `env:"DB_NAME" envDefault:"omega_db"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"10m"`

	// Path is the SQLite database file
	Path string `env:"DB_PATH" envDefault:"worldserver.db"`
}

// NewConnection opens and pings a database for driver, then creates the
// schema
func NewConnection(ctx context.Context, driver string, config Config) (*DB, error) {
	var dsn string
	switch driver {
	case Postgres:
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
		)
	case SQLite:
		dsn = "file:" + config.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if driver == SQLite {
		// one writer
		sqldb.SetMaxOpenConns(1)
	} else {
		sqldb.SetMaxOpenConns(config.MaxOpenConns)
		sqldb.SetMaxIdleConns(config.MaxIdleConns)
		sqldb.SetConnMaxLifetime(config.ConnMaxLifetime)
		sqldb.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	// Test connection
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqldb, driver: driver}
	if err := db.InitSchema(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	if driver == Postgres {
		log.Printf("[Database] Connected to %s:%s/%s", config.Host, config.Port, config.DBName)
		log.Printf("[Database] Pool config: MaxOpen=%d, MaxIdle=%d", config.MaxOpenConns, config.MaxIdleConns)
	} else {
		log.Printf("[Database] Opened %s", config.Path)
	}
	return db, nil
}

// Driver is the driver name the connection was opened with
func (db *DB) Driver() string {
	return db.driver
}

// InitSchema creates database tables if they don't exist
func (db *DB) InitSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			username VARCHAR(50) PRIMARY KEY,
			email VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	log.Println("[Database] Schema initialized")
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (db *DB) rebind(query string) string {
	if db.driver != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
