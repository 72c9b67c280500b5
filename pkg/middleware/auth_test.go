package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fkhayef/campuspay/pkg/middleware"
)

var secret = []byte("test-secret")

func signToken(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, middleware.Principal, bool) {
	t.Helper()

	var principal middleware.Principal
	var resolved bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, resolved = middleware.GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	middleware.Auth(secret)(next).ServeHTTP(rec, req)
	return rec, principal, resolved
}

func TestAuth_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "s1001",
		"role": "student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, secret)

	rec, principal, resolved := runAuth(t, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !resolved {
		t.Fatal("principal not set in context")
	}
	if principal.ID != "s1001" || principal.Role != "student" {
		t.Errorf("principal = %+v, want s1001/student", principal)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	rec, _, resolved := runAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if resolved {
		t.Error("handler should not run without credentials")
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	rec, _, _ := runAuth(t, "Token abc")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "s1001",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, secret)

	rec, _, resolved := runAuth(t, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if resolved {
		t.Error("handler should not run with an expired token")
	}
}

func TestAuth_WrongKey(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "s1001",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, []byte("other-secret"))

	rec, _, _ := runAuth(t, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_MissingSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, secret)

	rec, _, _ := runAuth(t, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
