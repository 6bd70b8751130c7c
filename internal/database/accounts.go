package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/omega-realm/worldserver/internal/account"
)

// AccountRepository implements account.Repository on the accounts table
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts the account, reporting account.ErrDuplicate when the
// username is taken
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := r.db.rebind(`
		INSERT INTO accounts (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, query, a.Username, a.Email, a.PasswordHash, a.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if n == 0 {
		return account.ErrDuplicate
	}
	return nil
}

// Get loads one account
func (r *AccountRepository) Get(ctx context.Context, username string) (*account.Account, error) {
	query := r.db.rebind(`
		SELECT username, email, password_hash, created_at
		FROM accounts
		WHERE username = ?`)

	var a account.Account
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, username).Scan(&a.Username, &a.Email, &a.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	a.CreatedAt = time.UnixMilli(createdAt)
	return &a, nil
}

// Count returns the number of registered accounts
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}
