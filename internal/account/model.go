package account

import "time"

// Role distinguishes the two kinds of wallet holders
type Role string

const (
	RoleStudent  Role = "student"
	RoleMerchant Role = "merchant"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleMerchant
}

// Account represents a wallet holder. ID is the stable opaque identifier
// (student number or merchant id). Balance is in cents, never negative,
// and is mutated only by the settlement engine.
type Account struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	BalanceCents int64     `json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
}
