package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RoleKey is the context key for storing the authenticated operator role.
const RoleKey contextKey = "role"

var errForbidden = errors.New("admin role required")

// GetRole extracts the operator role from the context.
// Returns empty string if not found.
func GetRole(ctx context.Context) auth.Role {
	role, _ := ctx.Value(RoleKey).(auth.Role)
	return role
}

// WithRole stores the operator role in the context.
func WithRole(ctx context.Context, role auth.Role) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAdmin returns an interceptor that validates the JWT in the
// Authorization header and requires the admin role.
func RequireAdmin(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			if claims.Role != auth.RoleAdmin {
				return nil, connect.NewError(connect.CodePermissionDenied, errForbidden)
			}

			return next(WithRole(ctx, claims.Role), req)
		}
	}
}

// RequireAdminHTTP is RequireAdmin for plain HTTP routes.
func RequireAdminHTTP(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			if claims.Role != auth.RoleAdmin {
				http.Error(w, errForbidden.Error(), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), claims.Role)))
		})
	}
}
