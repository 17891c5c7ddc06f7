package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront-session/internal/model"
)

type sessionVerifier interface {
	Verify(ctx context.Context, token string) (model.AuthUser, error)
}

type contextKey string

const (
	sessionUserContextKey  contextKey = "session_user"
	sessionTokenContextKey contextKey = "session_token"
)

type AuthMiddleware struct {
	verifier sessionVerifier
}

func NewAuthMiddleware(verifier sessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth resolves the bearer token (or the auth_token cookie) to a live
// user and stores it on the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeAccessError(w, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		user, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			code := "UNAUTHORIZED"
			if errors.Is(err, model.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
			}
			writeAccessError(w, code, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionUserContextKey, &user)
		ctx = context.WithValue(ctx, sessionTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeAccessError(w, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, exists := roleSet[strings.ToLower(user.Role)]; !exists {
				writeAccessError(w, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func UserFromContext(ctx context.Context) (*model.AuthUser, bool) {
	user, ok := ctx.Value(sessionUserContextKey).(*model.AuthUser)
	return user, ok
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenContextKey).(string)
	return token, ok
}

func writeAccessError(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
