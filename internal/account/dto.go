package account

import "github.com/fkhayef/campuspay/internal/money"

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	ID       string `json:"id" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=student merchant"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse represents a successful login
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
	CreatedAt    string `json:"created_at"`
}

// BalanceResponse represents just the balance
type BalanceResponse struct {
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
}

// ToResponse converts an Account model to an AccountResponse DTO
func (a *Account) ToResponse() *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		Role:         a.Role,
		Email:        a.Email,
		Balance:      money.FormatCents(a.BalanceCents),
		BalanceCents: a.BalanceCents,
		CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
