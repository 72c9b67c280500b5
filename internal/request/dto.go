package request

import "github.com/fkhayef/campuspay/internal/money"

// CreateRequest represents the request body for creating a payment request.
// Amount may be omitted; the payer then supplies it at settlement time.
type CreateRequest struct {
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// SettleRequest represents the request body for paying a payment request
type SettleRequest struct {
	Amount *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// Response represents a payment request in API responses
type Response struct {
	ID          string  `json:"id"`
	Beneficiary string  `json:"beneficiary"`
	Amount      *string `json:"amount,omitempty"`
	Kind        Kind    `json:"kind"`
	Status      Status  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ExpiresAt   string  `json:"expires_at"`
	PayURL      string  `json:"pay_url"`
}

// ToResponse converts a PaymentRequest to a Response DTO
func (r *PaymentRequest) ToResponse(payURL string) *Response {
	resp := &Response{
		ID:          r.ID,
		Beneficiary: r.Beneficiary,
		Kind:        r.Kind,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		ExpiresAt:   r.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		PayURL:      payURL,
	}
	if r.AmountCents != nil {
		amount := money.FormatCents(*r.AmountCents)
		resp.Amount = &amount
	}
	return resp
}
