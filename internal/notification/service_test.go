package notification

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fkhayef/campuspay/internal/account"
	"github.com/fkhayef/campuspay/internal/ledger"
)

// recordingMailer captures sent mail for assertions
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// memDirectory maps account ids to emails
type memDirectory map[string]string

func (d memDirectory) GetByID(ctx context.Context, id string) (*account.Account, error) {
	email, ok := d[id]
	if !ok {
		return nil, nil
	}
	return &account.Account{ID: id, Email: email}, nil
}

func TestDeliver_SendMailsBothParties(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewService(mailer, memDirectory{
		"alice": "alice@campus.edu",
		"bob":   "bob@campus.edu",
	})

	svc.deliver(&ledger.Entry{From: "alice", To: "bob", AmountCents: 4000, Kind: ledger.KindSend})

	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "alice@campus.edu" || !strings.Contains(mailer.sent[0].body, "You sent 40.00 to bob") {
		t.Errorf("unexpected payer mail: %+v", mailer.sent[0])
	}
	if mailer.sent[1].to != "bob@campus.edu" || !strings.Contains(mailer.sent[1].body, "You received 40.00 from alice") {
		t.Errorf("unexpected payee mail: %+v", mailer.sent[1])
	}
}

func TestDeliver_UploadMailsOnlyRecipientWithoutSentinel(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewService(mailer, memDirectory{"alice": "alice@campus.edu"})

	svc.deliver(&ledger.Entry{
		From:        ledger.SentinelUpload,
		To:          "alice",
		AmountCents: 5000,
		Kind:        ledger.KindUpload,
	})

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "alice@campus.edu" {
		t.Errorf("mail to = %q, want alice@campus.edu", mail.to)
	}
	if strings.Contains(mail.body, ledger.SentinelUpload) {
		t.Errorf("mail body leaks sentinel: %q", mail.body)
	}
	if !strings.Contains(mail.body, "topped up with 50.00") {
		t.Errorf("unexpected mail body: %q", mail.body)
	}
}

func TestDeliver_WithdrawMailsOnlyPayerWithoutSentinel(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewService(mailer, memDirectory{"alice": "alice@campus.edu"})

	svc.deliver(&ledger.Entry{
		From:        "alice",
		To:          ledger.SentinelWithdraw,
		AmountCents: 2500,
		Kind:        ledger.KindWithdraw,
	})

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "alice@campus.edu" {
		t.Errorf("mail to = %q, want alice@campus.edu", mail.to)
	}
	if strings.Contains(mail.body, ledger.SentinelWithdraw) {
		t.Errorf("mail body leaks sentinel: %q", mail.body)
	}
	if !strings.Contains(mail.body, "withdrew 25.00") {
		t.Errorf("unexpected mail body: %q", mail.body)
	}
}

func TestDeliver_UnknownAccountDropsMail(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewService(mailer, memDirectory{"alice": "alice@campus.edu"})

	svc.deliver(&ledger.Entry{From: "alice", To: "ghost", AmountCents: 100, Kind: ledger.KindSend})

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail (payer only), got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "alice@campus.edu" {
		t.Errorf("mail to = %q, want alice@campus.edu", mailer.sent[0].to)
	}
}
