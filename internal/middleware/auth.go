package middleware

import (
	"context"
	"net/http"
	"strings"

	"pharma-plus/internal/token"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Parse(tokenString string) (*token.Claims, uuid.UUID, error)
}

const userIDKey contextKey = "user_id"

// UserIDFrom returns the authenticated account id stored in ctx.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token.
func RequireAuth(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, provided, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(provided) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			_, userID, err := verifier.Parse(strings.TrimSpace(provided))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
