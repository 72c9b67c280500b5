package request

import (
	"context"
	"database/sql"
	"fmt"
)

// Store is the persistence surface the service needs. The completed flip
// is deliberately absent: it belongs to the settlement transaction.
type Store interface {
	Create(ctx context.Context, req *PaymentRequest) error
	GetByID(ctx context.Context, id string) (*PaymentRequest, error)
	CancelPending(ctx context.Context, id string) (bool, error)
	ListByBeneficiary(ctx context.Context, beneficiary string, limit, offset int) ([]*PaymentRequest, int, error)
	FailExpired(ctx context.Context) (int64, error)
}

// Repository handles payment request persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment request repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new payment request
func (r *Repository) Create(ctx context.Context, req *PaymentRequest) error {
	query := `
		INSERT INTO payment_requests (id, beneficiary_id, amount_cents, kind, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		req.ID, req.Beneficiary, req.AmountCents, req.Kind, req.Status, req.ExpiresAt,
	).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment request: %w", err)
	}

	return nil
}

// GetByID retrieves a payment request by its id
func (r *Repository) GetByID(ctx context.Context, id string) (*PaymentRequest, error) {
	query := `
		SELECT id, beneficiary_id, amount_cents, kind, status, created_at, expires_at, settled_at
		FROM payment_requests
		WHERE id = $1
	`

	req := &PaymentRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.Beneficiary,
		&req.AmountCents,
		&req.Kind,
		&req.Status,
		&req.CreatedAt,
		&req.ExpiresAt,
		&req.SettledAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}

	return req, nil
}

// CancelPending flips a pending request to cancelled. Returns false when
// the request was not pending (or does not exist).
func (r *Repository) CancelPending(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payment_requests SET status = $2 WHERE id = $1 AND status = $3`,
		id, StatusCancelled, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel payment request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListByBeneficiary retrieves a beneficiary's requests, newest first
func (r *Repository) ListByBeneficiary(ctx context.Context, beneficiary string, limit, offset int) ([]*PaymentRequest, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM payment_requests WHERE beneficiary_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, beneficiary).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payment requests: %w", err)
	}

	query := `
		SELECT id, beneficiary_id, amount_cents, kind, status, created_at, expires_at, settled_at
		FROM payment_requests
		WHERE beneficiary_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, beneficiary, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payment requests: %w", err)
	}
	defer rows.Close()

	var requests []*PaymentRequest
	for rows.Next() {
		req := &PaymentRequest{}
		if err := rows.Scan(
			&req.ID,
			&req.Beneficiary,
			&req.AmountCents,
			&req.Kind,
			&req.Status,
			&req.CreatedAt,
			&req.ExpiresAt,
			&req.SettledAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, nil
}

// FailExpired flips every expired pending request to failed. The lazy
// expiry check at settlement time remains authoritative; this just keeps
// listings tidy.
func (r *Repository) FailExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payment_requests SET status = $1 WHERE status = $2 AND expires_at <= now()`,
		StatusFailed, StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire payment requests: %w", err)
	}
	return result.RowsAffected()
}
