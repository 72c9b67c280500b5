package request

import "time"

// Status represents the lifecycle state of a payment request.
// A request leaves pending exactly once; every other state is terminal.
// The string values are shared with settlement's conditional flip.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Kind distinguishes the two request flavors
type Kind string

const (
	// KindQR is a student's receive request, shown as a QR code
	KindQR Kind = "qr"
	// KindMerchantLink is a merchant's payment link
	KindMerchantLink Kind = "merchant_link"
)

// PaymentRequest is a not-yet-settled intent to receive funds. AmountCents
// is nil when the payer fills the amount in at settlement time.
type PaymentRequest struct {
	ID          string     `json:"id"`
	Beneficiary string     `json:"beneficiary"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	Kind        Kind       `json:"kind"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

// Expired reports whether the request's TTL has elapsed at t
func (r *PaymentRequest) Expired(t time.Time) bool {
	return !t.Before(r.ExpiresAt)
}
