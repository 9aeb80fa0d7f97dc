package server

import (
	"context"
	"net/http"

	"github.com/simaris-dev/simaris-auth/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeyUser stores the resolved user record
	ContextKeyUser ContextKey = "user"
)

// RequireSessionAuth is middleware for browser routes that validates the
// session cookie and resolves the user, injecting both into the context.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, err := s.currentSession(r.Context(), r)
			if err != nil || !sess.Authenticated() {
				redirectWithError(w, r, RouteLogin, "Silakan masuk terlebih dahulu")
				return
			}

			user, err := s.users.GetByID(sess.UserID)
			if err != nil {
				// The user behind the session is gone; the session is dead
				if err := s.destroySession(r.Context(), w, r); err != nil {
					s.log.Warn().Err(err).Msg("failed to destroy orphaned session")
				}
				redirectWithError(w, r, RouteLogin, "Sesi tidak berlaku lagi")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, user.ID)
			ctx = context.WithValue(ctx, ContextKeyUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserFromContext returns the user injected by RequireSessionAuth
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}
