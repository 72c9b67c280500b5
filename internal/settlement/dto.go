package settlement

// SendRequest represents the request to send money to another account
type SendRequest struct {
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// WithdrawRequest represents the request to withdraw money from the system
type WithdrawRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// UploadRequest represents the request to top up the caller's balance
type UploadRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
