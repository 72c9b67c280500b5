package settlement

import (
	"context"
	"errors"

	"github.com/fkhayef/campuspay/internal/ledger"
)

var ErrSelfTransfer = errors.New("cannot transfer to yourself")

// Notifier is told about completed settlements, fire-and-forget. Delivery
// failures never roll anything back.
type Notifier interface {
	SettlementCompleted(entry *ledger.Entry)
}

// Service exposes the direct money-movement operations. Payer and payee
// resolution differs per operation; the engine does the rest.
type Service struct {
	engine   *Engine
	notifier Notifier
}

// NewService creates a new settlement service
func NewService(engine *Engine, notifier Notifier) *Service {
	return &Service{engine: engine, notifier: notifier}
}

// Send moves money between two real accounts
func (s *Service) Send(ctx context.Context, payerID, payeeID string, amountCents int64) (*ledger.Entry, error) {
	if payerID == payeeID {
		return nil, ErrSelfTransfer
	}

	entry, err := s.engine.Transfer(ctx, Intent{
		Payer:  AccountParty(payerID),
		Payee:  AccountParty(payeeID),
		Amount: amountCents,
		Kind:   ledger.KindSend,
	})
	if err != nil {
		return nil, err
	}

	s.notify(entry)
	return entry, nil
}

// Withdraw moves money out of the system; no counterparty is credited
func (s *Service) Withdraw(ctx context.Context, accountID string, amountCents int64) (*ledger.Entry, error) {
	entry, err := s.engine.Transfer(ctx, Intent{
		Payer:  AccountParty(accountID),
		Payee:  SystemSink(),
		Amount: amountCents,
		Kind:   ledger.KindWithdraw,
	})
	if err != nil {
		return nil, err
	}

	s.notify(entry)
	return entry, nil
}

// Upload moves money into the system; no counterparty is debited and the
// funds check is skipped
func (s *Service) Upload(ctx context.Context, accountID string, amountCents int64) (*ledger.Entry, error) {
	entry, err := s.engine.Transfer(ctx, Intent{
		Payer:  SystemSource(),
		Payee:  AccountParty(accountID),
		Amount: amountCents,
		Kind:   ledger.KindUpload,
	})
	if err != nil {
		return nil, err
	}

	s.notify(entry)
	return entry, nil
}

func (s *Service) notify(entry *ledger.Entry) {
	if s.notifier != nil {
		s.notifier.SettlementCompleted(entry)
	}
}
