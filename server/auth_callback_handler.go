package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/users"
)

// Localized error shown on the login page when a callback token is rejected
const callbackErrorMessage = "Login SSO gagal. Silakan coba lagi atau masuk secara manual."

// SSOCallbackHandler completes a federated login: the provider redirects
// here with a token whose payload identifies the user.
func (s *Server) SSOCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := r.URL.Query().Get("token")
		claim, err := s.decoder.Decode(token)
		if err != nil {
			// Recoverable, user-visible failure: back to the login page,
			// no user is created or authenticated.
			s.log.Warn().Err(err).Msg("callback: rejected token")
			s.metrics.CallbackLogins.WithLabelValues("invalid_token").Inc()
			redirectWithError(w, r, RouteLogin, callbackErrorMessage)
			return
		}

		user, err := s.resolveUser(claim.Email, claim.Name)
		if err != nil {
			s.log.Err(err).Str("email", claim.Email).Msg("callback: failed to resolve user")
			s.metrics.CallbackLogins.WithLabelValues("error").Inc()
			redirectWithError(w, r, RouteLogin, callbackErrorMessage)
			return
		}

		sess, err := s.ensureSession(ctx, w, r)
		if err != nil {
			s.log.Err(err).Msg("callback: failed to load session")
			s.metrics.CallbackLogins.WithLabelValues("error").Inc()
			redirectWithError(w, r, RouteLogin, callbackErrorMessage)
			return
		}

		returnURL := sess.ReturnURL

		// Regenerate the session ID at the authentication boundary
		if _, err := s.regenerateSession(ctx, w, r, sess, user.ID); err != nil {
			s.log.Err(err).Msg("callback: failed to establish session")
			s.metrics.CallbackLogins.WithLabelValues("error").Inc()
			redirectWithError(w, r, RouteLogin, callbackErrorMessage)
			return
		}

		if err := s.users.SetLastLogin(user.Email); err != nil {
			s.log.Warn().Err(err).Msg("callback: failed to record last login")
		}

		s.metrics.CallbackLogins.WithLabelValues("success").Inc()

		if returnURL == "" || returnURL == RouteIndex {
			returnURL = RouteDashboard
		}
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// resolveUser looks up a user by the claim email, provisioning a new account
// on first login. SSO-provisioned accounts get a random unusable password;
// authentication stays delegated to the provider.
func (s *Server) resolveUser(email, name string) (*users.User, error) {
	user, err := s.users.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.Wrapf(err, "[Server resolveUser] failed to look up user")
	}

	passwordHash, err := users.HashPassword(users.RandomPassword())
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Server resolveUser] failed to hash password")
	}

	user = &users.User{
		ID:           uuid.New().String(),
		Email:        users.NormalizeEmail(email),
		Name:         name,
		PasswordHash: passwordHash,
		Roles:        []users.RoleType{users.RoleOwnerRisk},
		CreatedAt:    time.Now(),
	}
	if err := s.users.Upsert(user); err != nil {
		return nil, apperrors.Wrapf(err, "[Server resolveUser] failed to create user")
	}

	s.log.Info().Str("email", user.Email).Msg("provisioned user from SSO claim")
	s.metrics.CallbackLogins.WithLabelValues("provisioned").Inc()
	return user, nil
}
