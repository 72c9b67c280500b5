package ledger

import "github.com/fkhayef/campuspay/internal/money"

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID          int64  `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Kind        Kind   `json:"kind"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts an Entry to an EntryResponse DTO
func (e *Entry) ToResponse() *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		From:        e.From,
		To:          e.To,
		Amount:      money.FormatCents(e.AmountCents),
		AmountCents: e.AmountCents,
		Kind:        e.Kind,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
