package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"course-manager/internal/auth"
	"course-manager/internal/model"
)

const AccessTokenCookie = "access_token"

type identityResolver interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	resolver identityResolver
}

func NewAuthMiddleware(resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth admits a request only when it carries a verified access token
// for a user that still exists. Every denial is a 403.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			writeDenied(w, http.StatusForbidden, "FORBIDDEN", "access token not found")
			return
		}

		claims, err := m.resolver.VerifyAccessToken(token)
		if err != nil {
			writeDenied(w, http.StatusForbidden, "FORBIDDEN", "invalid access token")
			return
		}

		exists, err := m.resolver.Exists(r.Context(), claims.UserID)
		if err != nil {
			slog.Error("identity lookup failed", "user_id", claims.UserID, "error", err)
			writeDenied(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
			return
		}
		if !exists {
			writeDenied(w, http.StatusForbidden, "FORBIDDEN", "user from access token does not exist")
			return
		}

		identity := &model.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// Authorize checks the identity attached by RequireAuth against the roles
// declared for op. Operations without declared roles are open.
func (m *AuthMiddleware) Authorize(op Operation) func(http.Handler) http.Handler {
	allowed := RolesFor(op)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusForbidden, "FORBIDDEN", "access token not found")
				return
			}

			if !roleAllowed(identity.Role, allowed) {
				writeDenied(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	return identity, ok && identity != nil
}

func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

func writeDenied(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
