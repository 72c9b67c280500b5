package ledger

import "time"

// Kind classifies how money moved in an entry
type Kind string

const (
	KindSend            Kind = "send"
	KindWithdraw        Kind = "withdraw"
	KindUpload          Kind = "upload"
	KindMerchantPayment Kind = "merchant_payment"
)

// Sentinel participant identifiers for money entering or leaving the system.
// They appear only in persisted entries, never as real account ids.
const (
	SentinelUpload   = "UPLOAD"
	SentinelWithdraw = "WITHDRAW"
)

// Entry represents one completed transfer in the append-only ledger.
// Entries are immutable once created; only the settlement engine appends them.
type Entry struct {
	ID          int64     `json:"id"`
	From        string    `json:"from"` // account id or SentinelUpload
	To          string    `json:"to"`   // account id or SentinelWithdraw
	AmountCents int64     `json:"amount_cents"`
	Kind        Kind      `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
}
