package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/unipay/unipay/internal/auth"
	"github.com/unipay/unipay/internal/models"
	"github.com/unipay/unipay/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// roleKey is the context key for the resolved account role.
	roleKey contextKey = "account_role"
)

// GetRole extracts the resolved account role from the context.
// Returns nil if the request was not authenticated.
func GetRole(ctx context.Context) *models.AccountRole {
	role, _ := ctx.Value(roleKey).(*models.AccountRole)
	return role
}

// RequireAuth validates the bearer token and resolves the account's
// role from storage on every request. The token carries only the
// account id; capabilities always reflect the current database state,
// so a demotion takes effect on the target's very next request.
func RequireAuth(jwtManager *auth.JWTManager, store storage.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			role, err := store.ResolveRole(r.Context(), claims.AccountID)
			if err != nil || !role.Account.IsActive {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
