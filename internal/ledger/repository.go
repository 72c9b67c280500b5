package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository reads the ledger. Entries are appended only by the settlement
// engine, inside its transaction; nothing here mutates.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new ledger repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a single ledger entry
func (r *Repository) GetByID(ctx context.Context, id int64) (*Entry, error) {
	query := `
		SELECT id, from_id, to_id, amount_cents, kind, created_at
		FROM ledger_entries
		WHERE id = $1
	`

	entry := &Entry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.From,
		&entry.To,
		&entry.AmountCents,
		&entry.Kind,
		&entry.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return entry, nil
}

// ListByParticipant retrieves entries involving an account, newest first
func (r *Repository) ListByParticipant(ctx context.Context, accountID string, limit, offset int) ([]*Entry, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*) FROM ledger_entries
		WHERE from_id = $1 OR to_id = $1
	`
	if err := r.db.QueryRowContext(ctx, countQuery, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	query := `
		SELECT id, from_id, to_id, amount_cents, kind, created_at
		FROM ledger_entries
		WHERE from_id = $1 OR to_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.From,
			&entry.To,
			&entry.AmountCents,
			&entry.Kind,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}
