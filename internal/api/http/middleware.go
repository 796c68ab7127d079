package http

import (
	"context"
	"net/http"
	"strings"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware validates the bearer token and stashes the acting user on the
// request context. Token issuance lives elsewhere; this only consumes tokens.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token", Kind: "unauthorized"})
			return
		}

		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error(), Kind: "unauthorized"})
			return
		}

		actor := domain.Actor{UserID: claims.UserID, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func actorFrom(r *http.Request) domain.Actor {
	if actor, ok := r.Context().Value(actorKey).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}
