package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fkhayef/campuspay/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const principalKey ContextKey = "principal"

// Principal is the authenticated identity resolved from a bearer token.
// The rest of the system trusts it and never re-validates credentials.
type Principal struct {
	ID   string
	Role string
}

// Auth returns a middleware that validates the bearer token and stores the
// resolved principal in the request context
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			principal, err := resolveToken(parts[1], secret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					response.Unauthorized(w, "Token expired")
					return
				}
				response.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveToken parses and validates a signed token and extracts the principal
func resolveToken(tokenStr string, secret []byte) (Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Principal{}, errors.New("subject claim missing")
	}
	role, _ := claims["role"].(string)

	return Principal{ID: sub, Role: role}, nil
}

// GetPrincipal extracts the authenticated principal from the request context
func GetPrincipal(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey).(Principal)
	return principal, ok
}
