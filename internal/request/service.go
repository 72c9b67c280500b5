package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/campuspay/internal/account"
	"github.com/fkhayef/campuspay/internal/ledger"
	"github.com/fkhayef/campuspay/internal/settlement"
)

// Common errors
var (
	ErrRequestNotFound = settlement.ErrRequestNotFound
	ErrAmountRequired  = errors.New("an amount is required to settle this request")
	ErrNotBeneficiary  = errors.New("only the beneficiary can cancel this request")
	ErrSelfPayment     = errors.New("cannot pay your own request")
)

// Service handles the two-phase settlement flow: create a pending request,
// later settle it through the engine with a one-shot status flip.
type Service struct {
	store    Store
	engine   *settlement.Engine
	notifier settlement.Notifier
	ttl      time.Duration
	baseURL  string
}

// NewService creates a new payment request service
func NewService(store Store, engine *settlement.Engine, notifier settlement.Notifier, ttl time.Duration, baseURL string) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		store:    store,
		engine:   engine,
		notifier: notifier,
		ttl:      ttl,
		baseURL:  baseURL,
	}
}

// PayURL returns the URL a payer opens to settle the request
func (s *Service) PayURL(id string) string {
	return fmt.Sprintf("%s/api/v1/requests/%s/pay", s.baseURL, id)
}

// Create registers a new pending request. Students create QR receive
// requests; merchants create payment links. Amount is optional: a nil
// amount means the payer fills it in when settling.
func (s *Service) Create(ctx context.Context, beneficiary string, role account.Role, amountCents *int64) (*PaymentRequest, error) {
	kind := KindQR
	if role == account.RoleMerchant {
		kind = KindMerchantLink
	}

	req := &PaymentRequest{
		ID:          uuid.NewString(),
		Beneficiary: beneficiary,
		AmountCents: amountCents,
		Kind:        kind,
		Status:      StatusPending,
		ExpiresAt:   time.Now().Add(s.ttl),
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// GetByID retrieves a payment request
func (s *Service) GetByID(ctx context.Context, id string) (*PaymentRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// Settle pays a pending request. The request's own amount wins over the
// caller's; with neither, the settle fails before touching storage. The
// status flip to completed happens inside the engine's transaction, so of
// any number of concurrent settles exactly one succeeds and a failed
// transfer leaves the request pending for retry.
func (s *Service) Settle(ctx context.Context, id, payerID string, amountCents *int64) (*ledger.Entry, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payerID == req.Beneficiary {
		return nil, ErrSelfPayment
	}

	resolved := req.AmountCents
	if resolved == nil {
		resolved = amountCents
	}
	if resolved == nil {
		return nil, ErrAmountRequired
	}

	kind := ledger.KindSend
	if req.Kind == KindMerchantLink {
		kind = ledger.KindMerchantPayment
	}

	// The pre-read above is advisory only; the conditional flip inside
	// the transaction is what enforces one-shot settlement and expiry.
	entry, err := s.engine.Transfer(ctx, settlement.Intent{
		Payer:     settlement.AccountParty(payerID),
		Payee:     settlement.AccountParty(req.Beneficiary),
		Amount:    *resolved,
		Kind:      kind,
		RequestID: req.ID,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.SettlementCompleted(entry)
	}
	return entry, nil
}

// Cancel flips a pending request to cancelled, one-shot
func (s *Service) Cancel(ctx context.Context, id, callerID string) (*PaymentRequest, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Beneficiary != callerID {
		return nil, ErrNotBeneficiary
	}

	changed, err := s.store.CancelPending(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, settlement.ErrRequestAlreadySettled
	}

	req.Status = StatusCancelled
	return req, nil
}

// Page reports the pagination actually applied to a list query after
// clamping, plus the total row count.
type Page struct {
	Page    int
	PerPage int
	Total   int
}

// ListByBeneficiary retrieves the caller's requests with pagination. The
// returned Page carries the clamped values the query ran with, so callers
// report exactly what was queried.
func (s *Service) ListByBeneficiary(ctx context.Context, beneficiary string, page, perPage int) ([]*PaymentRequest, Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	requests, total, err := s.store.ListByBeneficiary(ctx, beneficiary, perPage, offset)
	if err != nil {
		return nil, Page{}, err
	}
	return requests, Page{Page: page, PerPage: perPage, Total: total}, nil
}
