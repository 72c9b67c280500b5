package ledger

import (
	"context"
	"errors"
)

var ErrEntryNotFound = errors.New("ledger entry not found")

// Service handles ledger read logic
type Service struct {
	repo *Repository
}

// NewService creates a new ledger service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a single entry
func (s *Service) GetByID(ctx context.Context, id int64) (*Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

// Page reports the pagination actually applied to a list query after
// clamping, plus the total row count.
type Page struct {
	Page    int
	PerPage int
	Total   int
}

// ListByParticipant retrieves an account's history with pagination, newest
// first. The returned Page carries the clamped values the query ran with.
func (s *Service) ListByParticipant(ctx context.Context, accountID string, page, perPage int) ([]*Entry, Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	entries, total, err := s.repo.ListByParticipant(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, Page{}, err
	}
	return entries, Page{Page: page, PerPage: perPage, Total: total}, nil
}
