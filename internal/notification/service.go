package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/fkhayef/campuspay/internal/account"
	"github.com/fkhayef/campuspay/internal/ledger"
	"github.com/fkhayef/campuspay/internal/money"
)

// AccountDirectory resolves an account id to a deliverable address.
// Returns nil, nil when the account does not exist.
type AccountDirectory interface {
	GetByID(ctx context.Context, id string) (*account.Account, error)
}

// Service emails both sides of a completed settlement. Delivery is
// fire-and-forget: it runs on its own goroutine and failures are logged,
// never propagated, so a broken relay cannot roll back a settlement.
type Service struct {
	mailer   Mailer
	accounts AccountDirectory
}

// NewService creates a new notification service
func NewService(mailer Mailer, accounts AccountDirectory) *Service {
	return &Service{mailer: mailer, accounts: accounts}
}

// SettlementCompleted notifies the participants of a settled transfer
func (s *Service) SettlementCompleted(entry *ledger.Entry) {
	go s.deliver(entry)
}

// deliver mails each real participant. Sentinel parties are not
// mailboxes, so top-ups and withdrawals get a single one-sided message
// that never leaks the sentinel identifier.
func (s *Service) deliver(entry *ledger.Entry) {
	amount := money.FormatCents(entry.AmountCents)

	switch {
	case entry.From == ledger.SentinelUpload:
		body := fmt.Sprintf("Your wallet was topped up with %s.", amount)
		s.send(entry.To, fmt.Sprintf("CampusPay: %s received", amount), body)
	case entry.To == ledger.SentinelWithdraw:
		body := fmt.Sprintf("You withdrew %s from your wallet.", amount)
		s.send(entry.From, fmt.Sprintf("CampusPay: %s withdrawn", amount), body)
	default:
		s.send(entry.From, fmt.Sprintf("CampusPay: %s sent", amount),
			fmt.Sprintf("You sent %s to %s.", amount, entry.To))
		s.send(entry.To, fmt.Sprintf("CampusPay: %s received", amount),
			fmt.Sprintf("You received %s from %s.", amount, entry.From))
	}
}

func (s *Service) send(accountID, subject, body string) {
	acct, err := s.accounts.GetByID(context.Background(), accountID)
	if err != nil || acct == nil {
		log.Printf("notification: could not resolve account %s: %v", accountID, err)
		return
	}

	if err := s.mailer.Send(acct.Email, subject, body); err != nil {
		log.Printf("notification: failed to email %s: %v", accountID, err)
	}
}
