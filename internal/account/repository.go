package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles account persistence. Balances are written only by the
// settlement engine inside its transaction; this repository never updates
// them.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new account repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account with zero balance
func (r *Repository) Create(ctx context.Context, id string, role Role, email, passwordHash string) (*Account, error) {
	query := `
		INSERT INTO accounts (id, role, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, role, email, password_hash, balance, created_at
	`

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, id, role, email, passwordHash).Scan(
		&account.ID,
		&account.Role,
		&account.Email,
		&account.PasswordHash,
		&account.BalanceCents,
		&account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetByID retrieves an account by its identifier
func (r *Repository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := `
		SELECT id, role, email, password_hash, balance, created_at
		FROM accounts
		WHERE id = $1
	`

	account := &Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Role,
		&account.Email,
		&account.PasswordHash,
		&account.BalanceCents,
		&account.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetBalance retrieves just the balance in cents
func (r *Repository) GetBalance(ctx context.Context, id string) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = $1`, id).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}
