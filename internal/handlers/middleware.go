package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/models"
)

type contextKey struct{}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// BearerToken extracts the token from an Authorization header. Browsers
// cannot set headers on a WebSocket upgrade, so access_token in the query
// is accepted as well.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

// Authenticate rejects requests without a valid bearer token and stores
// the caller in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, models.Response[any]{
					Code:    "UNAUTHORIZED",
					Message: "Authorization header is required",
				})
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, models.Response[any]{
					Code:    "UNAUTHORIZED",
					Message: "invalid or expired token",
				})
				return
			}
			user := models.Participant{UserID: claims.UserID, Nickname: claims.Nickname}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores the authenticated caller in ctx.
func WithUser(ctx context.Context, user models.Participant) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the caller stored by Authenticate.
func UserFromContext(ctx context.Context) (models.Participant, bool) {
	user, ok := ctx.Value(contextKey{}).(models.Participant)
	return user, ok
}
