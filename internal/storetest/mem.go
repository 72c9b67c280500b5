// Package storetest provides an in-memory transactional store used by the
// settlement and request package tests. One mutex serializes whole
// transactions, which models the serialization the real store gets from
// row locks, and staged mutations are discarded when the transaction
// function returns an error.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/fkhayef/campuspay/internal/ledger"
	"github.com/fkhayef/campuspay/internal/request"
	"github.com/fkhayef/campuspay/internal/settlement"
)

// MemStore implements settlement.Store and request.Store in memory
type MemStore struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  []ledger.Entry
	requests map[string]*request.PaymentRequest
	nextID   int64

	// Now is the clock used for expiry checks; overridable in tests
	Now func() time.Time
}

// NewMemStore creates an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		balances: make(map[string]int64),
		requests: make(map[string]*request.PaymentRequest),
		Now:      time.Now,
	}
}

// Seed sets an account balance directly
func (m *MemStore) Seed(accountID string, balanceCents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balanceCents
}

// Balance reads a committed balance
func (m *MemStore) Balance(accountID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID]
}

// Entries returns a copy of the committed ledger
func (m *MemStore) Entries() []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Request returns a committed payment request
func (m *MemStore) Request(id string) *request.PaymentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id]
}

// RunInTx implements settlement.Store with commit/rollback semantics
func (m *MemStore) RunInTx(ctx context.Context, fn func(tx settlement.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		store:  m,
		deltas: make(map[string]int64),
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit staged mutations
	for id, delta := range tx.deltas {
		m.balances[id] += delta
	}
	for _, entry := range tx.entries {
		m.entries = append(m.entries, *entry)
	}
	if tx.completedRequest != "" {
		now := m.Now()
		req := m.requests[tx.completedRequest]
		req.Status = request.StatusCompleted
		req.SettledAt = &now
	}
	return nil
}

type memTx struct {
	store            *MemStore
	deltas           map[string]int64
	entries          []*ledger.Entry
	completedRequest string
}

func (t *memTx) BalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	balance, ok := t.store.balances[accountID]
	if !ok {
		return 0, settlement.ErrAccountNotFound
	}
	return balance + t.deltas[accountID], nil
}

func (t *memTx) AddBalance(ctx context.Context, accountID string, delta int64) error {
	t.deltas[accountID] += delta
	return nil
}

func (t *memTx) AppendEntry(ctx context.Context, entry *ledger.Entry) error {
	t.store.nextID++
	entry.ID = t.store.nextID
	entry.CreatedAt = t.store.Now()
	t.entries = append(t.entries, entry)
	return nil
}

func (t *memTx) CompleteRequest(ctx context.Context, requestID string) error {
	req, ok := t.store.requests[requestID]
	if !ok {
		return settlement.ErrRequestNotFound
	}
	if req.Status != request.StatusPending {
		return settlement.ErrRequestAlreadySettled
	}
	if req.Expired(t.store.Now()) {
		return settlement.ErrRequestExpired
	}
	t.completedRequest = requestID
	return nil
}

// Create implements request.Store
func (m *MemStore) Create(ctx context.Context, req *request.PaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.CreatedAt = m.Now()
	clone := *req
	m.requests[req.ID] = &clone
	return nil
}

// GetByID implements request.Store; returns nil, nil when missing
func (m *MemStore) GetByID(ctx context.Context, id string) (*request.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

// CancelPending implements request.Store
func (m *MemStore) CancelPending(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || req.Status != request.StatusPending {
		return false, nil
	}
	req.Status = request.StatusCancelled
	return true, nil
}

// ListByBeneficiary implements request.Store
func (m *MemStore) ListByBeneficiary(ctx context.Context, beneficiary string, limit, offset int) ([]*request.PaymentRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []*request.PaymentRequest
	for _, req := range m.requests {
		if req.Beneficiary == beneficiary {
			clone := *req
			all = append(all, &clone)
		}
	}

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// FailExpired implements request.Store
func (m *MemStore) FailExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	now := m.Now()
	for _, req := range m.requests {
		if req.Status == request.StatusPending && req.Expired(now) {
			req.Status = request.StatusFailed
			n++
		}
	}
	return n, nil
}
