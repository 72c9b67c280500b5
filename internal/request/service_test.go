package request_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fkhayef/campuspay/internal/account"
	"github.com/fkhayef/campuspay/internal/ledger"
	"github.com/fkhayef/campuspay/internal/request"
	"github.com/fkhayef/campuspay/internal/settlement"
	"github.com/fkhayef/campuspay/internal/storetest"
)

func newService(t *testing.T) (*request.Service, *storetest.MemStore) {
	t.Helper()
	store := storetest.NewMemStore()
	engine := settlement.NewEngine(store)
	svc := request.NewService(store, engine, nil, time.Hour, "http://localhost:8080")
	return svc, store
}

func cents(v int64) *int64 { return &v }

func TestCreate_StartsPendingWithExpiry(t *testing.T) {
	svc, store := newService(t)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Status != request.StatusPending {
		t.Errorf("status = %s, want pending", req.Status)
	}
	if req.Kind != request.KindMerchantLink {
		t.Errorf("kind = %s, want merchant_link", req.Kind)
	}
	if req.ID == "" {
		t.Error("id not assigned")
	}
	if !req.ExpiresAt.After(time.Now()) {
		t.Error("expiry not in the future")
	}
	if stored := store.Request(req.ID); stored == nil {
		t.Error("request not persisted")
	}
}

func TestCreate_StudentGetsQRKind(t *testing.T) {
	svc, _ := newService(t)

	req, err := svc.Create(context.Background(), "s1001", account.RoleStudent, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Kind != request.KindQR {
		t.Errorf("kind = %s, want qr", req.Kind)
	}
	if req.AmountCents != nil {
		t.Error("amount should be open")
	}
}

func TestSettle_CompletesRequestAndMovesMoney(t *testing.T) {
	svc, store := newService(t)
	store.Seed("payer", 10000)
	store.Seed("merchant-1", 0)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	entry, err := svc.Settle(context.Background(), req.ID, "payer", nil)
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	if entry.Kind != ledger.KindMerchantPayment {
		t.Errorf("entry kind = %s, want merchant_payment", entry.Kind)
	}
	if got := store.Balance("payer"); got != 7500 {
		t.Errorf("payer balance = %d, want 7500", got)
	}
	if got := store.Balance("merchant-1"); got != 2500 {
		t.Errorf("merchant balance = %d, want 2500", got)
	}
	if got := store.Request(req.ID).Status; got != request.StatusCompleted {
		t.Errorf("request status = %s, want completed", got)
	}
	if len(store.Entries()) != 1 {
		t.Errorf("expected 1 ledger entry, got %d", len(store.Entries()))
	}
}

func TestSettle_PayerSuppliesOpenAmount(t *testing.T) {
	svc, store := newService(t)
	store.Seed("payer", 10000)
	store.Seed("s1001", 0)

	req, err := svc.Create(context.Background(), "s1001", account.RoleStudent, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	entry, err := svc.Settle(context.Background(), req.ID, "payer", cents(1500))
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if entry.Kind != ledger.KindSend {
		t.Errorf("entry kind = %s, want send", entry.Kind)
	}
	if got := store.Balance("s1001"); got != 1500 {
		t.Errorf("beneficiary balance = %d, want 1500", got)
	}
}

func TestSettle_AmountRequired(t *testing.T) {
	svc, store := newService(t)
	store.Seed("payer", 10000)
	store.Seed("s1001", 0)

	req, err := svc.Create(context.Background(), "s1001", account.RoleStudent, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Settle(context.Background(), req.ID, "payer", nil)
	if !errors.Is(err, request.ErrAmountRequired) {
		t.Fatalf("expected ErrAmountRequired, got %v", err)
	}
	if got := store.Request(req.ID).Status; got != request.StatusPending {
		t.Errorf("request status = %s, want pending", got)
	}
}

func TestSettle_UnknownRequest(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Settle(context.Background(), "nope", "payer", cents(100))
	if !errors.Is(err, request.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestSettle_SelfPaymentRejected(t *testing.T) {
	svc, store := newService(t)
	store.Seed("merchant-1", 1000)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Settle(context.Background(), req.ID, "merchant-1", nil)
	if !errors.Is(err, request.ErrSelfPayment) {
		t.Fatalf("expected ErrSelfPayment, got %v", err)
	}
}

func TestSettle_ExpiredRequest(t *testing.T) {
	svc, store := newService(t)
	store.Seed("payer", 10000)
	store.Seed("merchant-1", 0)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Jump the store's clock past the expiry
	store.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Settle(context.Background(), req.ID, "payer", nil)
	if !errors.Is(err, settlement.ErrRequestExpired) {
		t.Fatalf("expected ErrRequestExpired, got %v", err)
	}

	if got := store.Balance("payer"); got != 10000 {
		t.Errorf("payer balance = %d, want 10000", got)
	}
	if got := store.Balance("merchant-1"); got != 0 {
		t.Errorf("merchant balance = %d, want 0", got)
	}
	if len(store.Entries()) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(store.Entries()))
	}
}

func TestSettle_FailedTransferLeavesRequestPending(t *testing.T) {
	svc, store := newService(t)
	store.Seed("payer", 100)
	store.Seed("merchant-1", 0)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Settle(context.Background(), req.ID, "payer", nil)
	if !errors.Is(err, settlement.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Status unchanged, so a retry with funds can still succeed
	if got := store.Request(req.ID).Status; got != request.StatusPending {
		t.Fatalf("request status = %s, want pending", got)
	}

	store.Seed("payer", 10000)
	if _, err := svc.Settle(context.Background(), req.ID, "payer", nil); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestSettle_ConcurrentDoubleSettle(t *testing.T) {
	svc, store := newService(t)
	store.Seed("payer-a", 10000)
	store.Seed("payer-b", 10000)
	store.Seed("merchant-1", 0)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, payer := range []string{"payer-a", "payer-b"} {
		go func(i int, payer string) {
			defer wg.Done()
			_, errs[i] = svc.Settle(context.Background(), req.ID, payer, nil)
		}(i, payer)
	}
	wg.Wait()

	var successes, alreadySettled int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, settlement.ErrRequestAlreadySettled):
			alreadySettled++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || alreadySettled != 1 {
		t.Errorf("got %d successes and %d already-settled, want 1 and 1", successes, alreadySettled)
	}
	if got := store.Balance("merchant-1"); got != 2500 {
		t.Errorf("merchant balance = %d, want 2500", got)
	}
	if len(store.Entries()) != 1 {
		t.Errorf("expected exactly 1 ledger entry, got %d", len(store.Entries()))
	}
}

func TestCancel_OneShot(t *testing.T) {
	svc, store := newService(t)
	store.Seed("merchant-1", 0)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), req.ID, "someone-else"); !errors.Is(err, request.ErrNotBeneficiary) {
		t.Fatalf("expected ErrNotBeneficiary, got %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), req.ID, "merchant-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != request.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	if _, err := svc.Cancel(context.Background(), req.ID, "merchant-1"); !errors.Is(err, settlement.ErrRequestAlreadySettled) {
		t.Fatalf("expected ErrRequestAlreadySettled on second cancel, got %v", err)
	}

	// A cancelled request cannot be settled either
	store.Seed("payer", 10000)
	if _, err := svc.Settle(context.Background(), req.ID, "payer", nil); !errors.Is(err, settlement.ErrRequestAlreadySettled) {
		t.Fatalf("expected ErrRequestAlreadySettled on settle after cancel, got %v", err)
	}
}

func TestListByBeneficiary_ClampsPagination(t *testing.T) {
	svc, _ := newService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(100)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	requests, pg, err := svc.ListByBeneficiary(context.Background(), "merchant-1", 0, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Out-of-range inputs are clamped, and the reported values match the
	// query that actually ran
	if pg.Page != 1 || pg.PerPage != 20 {
		t.Errorf("page = %d perPage = %d, want 1 and 20", pg.Page, pg.PerPage)
	}
	if pg.Total != 3 {
		t.Errorf("total = %d, want 3", pg.Total)
	}
	if len(requests) != 3 {
		t.Errorf("got %d requests, want 3", len(requests))
	}
}

func TestSweeper_FailsExpiredRequests(t *testing.T) {
	svc, store := newService(t)
	store.Seed("merchant-1", 0)

	req, err := svc.Create(context.Background(), "merchant-1", account.RoleMerchant, cents(2500))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	store.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	n, err := store.FailExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expired %d requests, want 1", n)
	}
	if got := store.Request(req.ID).Status; got != request.StatusFailed {
		t.Errorf("request status = %s, want failed", got)
	}
}
