package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fkhayef/campuspay/internal/ledger"
)

// PostgresStore implements Store on top of database/sql
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new settlement store with database dependency injected
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RunInTx runs fn inside one database transaction. Serialization failures
// and deadlocks surface as ErrTransientConflict so the engine can retry.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return translatePGError(err)
	}

	if err := tx.Commit(); err != nil {
		return translatePGError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// translatePGError maps retryable postgres failures to ErrTransientConflict
func translatePGError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return ErrTransientConflict
		}
	}
	return err
}

type pgTx struct {
	tx *sql.Tx
}

// BalanceForUpdate reads and row-locks an account balance
func (t *pgTx) BalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	var balance int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`,
		accountID,
	).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return balance, nil
}

// AddBalance adjusts an account balance inside the transaction
func (t *pgTx) AddBalance(ctx context.Context, accountID string, delta int64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $2 WHERE id = $1`,
		accountID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance of %s: %w", accountID, err)
	}
	return nil
}

// AppendEntry inserts a ledger entry and fills its generated fields
func (t *pgTx) AppendEntry(ctx context.Context, entry *ledger.Entry) error {
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (from_id, to_id, amount_cents, kind)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		entry.From, entry.To, entry.AmountCents, entry.Kind,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// CompleteRequest flips a pending request to completed, one-shot. The
// conditional update is the authoritative double-settle guard: of any
// number of concurrent settles, exactly one sees a row change.
func (t *pgTx) CompleteRequest(ctx context.Context, requestID string) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE payment_requests
		 SET status = 'completed', settled_at = now()
		 WHERE id = $1 AND status = 'pending' AND expires_at > now()`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete payment request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Nothing changed: figure out which failure to report
	var status string
	var expiresAt time.Time
	err = t.tx.QueryRowContext(ctx,
		`SELECT status, expires_at FROM payment_requests WHERE id = $1`,
		requestID,
	).Scan(&status, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to inspect payment request: %w", err)
	}
	if status != "pending" {
		return ErrRequestAlreadySettled
	}
	return ErrRequestExpired
}
