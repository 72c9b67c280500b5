package settlement

import (
	"context"
	"errors"
	"sort"

	"github.com/fkhayef/campuspay/internal/ledger"
	"github.com/fkhayef/campuspay/internal/money"
)

// Common errors
var (
	ErrInvalidAmount         = money.ErrInvalidAmount
	ErrAccountNotFound       = errors.New("account not found")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrTransientConflict     = errors.New("transfer conflicted with concurrent activity, try again")
	ErrRequestNotFound       = errors.New("payment request not found")
	ErrRequestAlreadySettled = errors.New("payment request already settled")
	ErrRequestExpired        = errors.New("payment request expired")

	errInvalidParties = errors.New("invalid transfer parties")
)

// maxAttempts bounds internal retries on transient storage conflicts
const maxAttempts = 3

// Intent describes one transfer for the engine to execute
type Intent struct {
	Payer  Party
	Payee  Party
	Amount int64 // cents, must be positive
	Kind   ledger.Kind

	// RequestID, when set, is a pending payment request that must flip to
	// completed in the same transaction as the transfer. The flip is
	// one-shot: a request that is not pending (or is past expiry) aborts
	// the whole transfer.
	RequestID string
}

// Tx is the set of storage operations available inside one settlement
// transaction. Balance reads take row locks; every mutation commits or
// rolls back as a unit with the rest of the transaction.
type Tx interface {
	// BalanceForUpdate reads an account balance and locks the row for the
	// remainder of the transaction. Returns ErrAccountNotFound.
	BalanceForUpdate(ctx context.Context, accountID string) (int64, error)

	// AddBalance adjusts an account balance by delta (negative to debit)
	AddBalance(ctx context.Context, accountID string, delta int64) error

	// AppendEntry writes a ledger entry, filling in its ID and CreatedAt
	AppendEntry(ctx context.Context, entry *ledger.Entry) error

	// CompleteRequest flips a pending request to completed. Returns
	// ErrRequestNotFound, ErrRequestAlreadySettled or ErrRequestExpired.
	CompleteRequest(ctx context.Context, requestID string) error
}

// Store runs settlement transactions. RunInTx commits when fn returns nil
// and rolls back otherwise; it may return ErrTransientConflict for
// serialization failures, which the engine retries.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

// Engine is the only component that mutates balances or appends ledger
// entries. Every money-movement endpoint funnels into Transfer.
type Engine struct {
	store Store
}

// NewEngine creates a settlement engine on top of a transactional store
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Transfer atomically moves Amount from payer to payee and records one
// ledger entry. A SystemSource payer skips the debit and the funds check;
// a SystemSink payee skips the credit. No partial effect survives failure.
func (e *Engine) Transfer(ctx context.Context, intent Intent) (*ledger.Entry, error) {
	if intent.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if intent.Payer.Kind() == PartySink || intent.Payee.Kind() == PartySource {
		return nil, errInvalidParties
	}
	if !intent.Payer.IsAccount() && !intent.Payee.IsAccount() {
		return nil, errInvalidParties
	}

	var entry *ledger.Entry
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		entry, err = e.transferOnce(ctx, intent)
		if !errors.Is(err, ErrTransientConflict) {
			return entry, err
		}
	}
	return nil, err
}

func (e *Engine) transferOnce(ctx context.Context, intent Intent) (*ledger.Entry, error) {
	entry := &ledger.Entry{
		From:        intent.Payer.LedgerID(),
		To:          intent.Payee.LedgerID(),
		AmountCents: intent.Amount,
		Kind:        intent.Kind,
	}

	err := e.store.RunInTx(ctx, func(tx Tx) error {
		// Flip the pending request first so its row lock serializes
		// concurrent settles of the same request.
		if intent.RequestID != "" {
			if err := tx.CompleteRequest(ctx, intent.RequestID); err != nil {
				return err
			}
		}

		// Lock account rows in id order to avoid deadlocks between
		// transfers touching the same pair in opposite directions.
		ids := make([]string, 0, 2)
		if intent.Payer.IsAccount() {
			ids = append(ids, intent.Payer.AccountID())
		}
		if intent.Payee.IsAccount() {
			ids = append(ids, intent.Payee.AccountID())
		}
		sort.Strings(ids)

		balances := make(map[string]int64, len(ids))
		for _, id := range ids {
			balance, err := tx.BalanceForUpdate(ctx, id)
			if err != nil {
				return err
			}
			balances[id] = balance
		}

		if intent.Payer.IsAccount() {
			if balances[intent.Payer.AccountID()] < intent.Amount {
				return ErrInsufficientFunds
			}
			if err := tx.AddBalance(ctx, intent.Payer.AccountID(), -intent.Amount); err != nil {
				return err
			}
		}
		if intent.Payee.IsAccount() {
			if err := tx.AddBalance(ctx, intent.Payee.AccountID(), intent.Amount); err != nil {
				return err
			}
		}

		return tx.AppendEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}
