package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tutor-radar/internal/domain"
	jwtinfra "github.com/tutor-radar/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// Auth returns middleware that validates the Bearer JWT and injects claims into context.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := provider.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// ContextIdentity resolves the caller from the claims Auth placed on the
// request context. A request without claims is anonymous.
type ContextIdentity struct{}

func (ContextIdentity) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c == nil {
		return nil, nil
	}
	return &domain.Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}, nil
}
