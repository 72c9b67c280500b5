package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account identifier already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("role must be student or merchant")
)

// Store is the persistence surface the service depends on. GetByID
// returns nil, nil when the account does not exist.
type Store interface {
	Create(ctx context.Context, id string, role Role, email, passwordHash string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetBalance(ctx context.Context, id string) (int64, error)
}

// Service handles registration, login and account reads
type Service struct {
	repo      Store
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates a new account service
func NewService(repo Store, jwtSecret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a new account with a hashed password and zero balance
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*Account, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, req.ID, req.Role, req.Email, string(hash))
}

// Login verifies credentials and issues a signed bearer token carrying the
// account id and role. Everything downstream trusts this resolution.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, time.Time, error) {
	account, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	if account == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  account.ID,
		"role": string(account.Role),
		"exp":  expiresAt.Unix(),
		"iat":  time.Now().Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// GetByID retrieves an account
func (s *Service) GetByID(ctx context.Context, id string) (*Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetBalance retrieves an account's balance in cents
func (s *Service) GetBalance(ctx context.Context, id string) (int64, error) {
	return s.repo.GetBalance(ctx, id)
}
