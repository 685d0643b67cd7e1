package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/glowmart/glowmart-api/internal/domain/auth"
	"github.com/glowmart/glowmart-api/internal/domain/user"
)

// sessionKey is the context key for the authenticated session claims.
type sessionKey struct{}

// session is what authentication leaves in the request context.
type session struct {
	UserID string
	Role   user.Role
}

// sessionFrom extracts the authenticated session from the context.
func sessionFrom(ctx context.Context) (session, bool) {
	s, ok := ctx.Value(sessionKey{}).(session)
	return s, ok
}

// authenticate verifies the Bearer token and stores its claims in the
// request context. Requests without a valid token get 401.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, session{
			UserID: claims.Subject,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// require gates a handler on an authorization action. Role checks use the
// token's claims; ownership checks happen in the domain services.
func (h *Handler) require(action auth.Action, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !auth.Can(s.Role, action) {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
