package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory Store for service tests
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]*Account)}
}

func (s *memStore) Create(ctx context.Context, id string, role Role, email, passwordHash string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[id]; exists {
		return nil, ErrDuplicateAccount
	}
	acct := &Account{
		ID:           id,
		Role:         role,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.accounts[id] = acct
	return acct, nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return acct, nil
}

func (s *memStore) GetBalance(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return acct.BalanceCents, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, []byte("test-secret"), time.Hour), store
}

func TestRegister_CreatesAccountWithHashedPassword(t *testing.T) {
	svc, _ := newTestService()

	acct, err := svc.Register(context.Background(), &RegisterRequest{
		ID:       "s1001",
		Email:    "s1001@campus.edu",
		Password: "hunter2hunter2",
		Role:     RoleStudent,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if acct.BalanceCents != 0 {
		t.Errorf("new account balance = %d, want 0", acct.BalanceCents)
	}
	if acct.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_DuplicateAccount(t *testing.T) {
	svc, _ := newTestService()

	req := &RegisterRequest{
		ID:       "s1001",
		Email:    "s1001@campus.edu",
		Password: "hunter2hunter2",
		Role:     RoleStudent,
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		ID:       "s1001",
		Email:    "s1001@campus.edu",
		Password: "hunter2hunter2",
		Role:     Role("admin"),
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if len(store.accounts) != 0 {
		t.Errorf("expected no accounts created, got %d", len(store.accounts))
	}
}

func TestLogin_IssuesTokenWithIdentityClaims(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		ID:       "m2001",
		Email:    "cafe@campus.edu",
		Password: "espresso-machine",
		Role:     RoleMerchant,
	}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	token, expiresAt, err := svc.Login(context.Background(), &LoginRequest{
		ID:       "m2001",
		Password: "espresso-machine",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("token already expired: %v", expiresAt)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims["sub"] != "m2001" {
		t.Errorf("sub claim = %v, want m2001", claims["sub"])
	}
	if claims["role"] != "merchant" {
		t.Errorf("role claim = %v, want merchant", claims["role"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		ID:       "s1001",
		Email:    "s1001@campus.edu",
		Password: "hunter2hunter2",
		Role:     RoleStudent,
	}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, _, err := svc.Login(context.Background(), &LoginRequest{
		ID:       "s1001",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownAccount(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), &LoginRequest{
		ID:       "ghost",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
