package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "auth_user_id"

// Authenticator rejects requests whose bearer token is missing, invalid,
// expired, or not an access token, and places the authenticated user id in
// the request context. It must be mounted after Verifier.
func (m *Manager) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			unauthorized(w, r)
			return
		}

		if claims[claimTokenType] != tokenTypeAccess {
			unauthorized(w, r)
			return
		}

		idStr, ok := claims[claimUserID].(string)
		if !ok {
			unauthorized(w, r)
			return
		}
		userID, err := uuid.Parse(idStr)
		if err != nil {
			unauthorized(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id placed in the context by
// Authenticator.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": "authentication required"})
}
