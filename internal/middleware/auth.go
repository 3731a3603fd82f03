package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go-learnhub/internal/model"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.AuthClaims, error)
}

type identityLoader interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type contextKey string

const (
	identityContextKey contextKey = "auth_identity"
	claimsContextKey   contextKey = "auth_claims"
)

type AuthMiddleware struct {
	verifier tokenVerifier
	users    identityLoader
}

func NewAuthMiddleware(verifier tokenVerifier, users identityLoader) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users}
}

// RequireAuth gates a route behind a bearer token. The token is
// re-verified and the identity re-loaded on every request, so role or
// account changes take effect immediately rather than at token expiry.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAuthError(w, http.StatusUnauthorized, "NO_TOKEN", "no token provided, authorization denied")
			return
		}

		token := strings.TrimSpace(header[7:])
		claims, err := m.verifier.Verify(token)
		if err != nil {
			message := "token is not valid"
			if errors.Is(err, model.ErrTokenExpired) {
				message = "token has expired, please log in again"
			}
			writeAuthError(w, http.StatusUnauthorized, "INVALID_TOKEN", message)
			return
		}

		user, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			// Account deleted after issuance; the token outlives it.
			writeAuthError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "user not found")
			return
		}
		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), identityContextKey, user)
		ctx = context.WithValue(ctx, claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles composes after RequireAuth: a request with no attached
// identity is unauthorized, a recognized identity outside the accepted
// set is forbidden. The two outcomes are deliberately distinct.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, allowed := roleSet[strings.ToLower(user.Role)]; !allowed {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "access denied, you do not have the required role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(identityContextKey).(model.User)
	return user, ok
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*model.AuthClaims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
