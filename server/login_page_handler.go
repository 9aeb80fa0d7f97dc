package server

import (
	"net/http"
	"net/url"

	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/users"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName     string
	SSOLoginURL string // Empty when the provider is unavailable
	Error       string
	Email       string // Preserve email on error
}

// LoginPageHandler displays the login page (GET /login). It performs its own
// key exchange so the SSO link always carries a fresh public key,
// independent of the silent flow. A down provider degrades to a page
// without the SSO link instead of an error.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl, err := lookupTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Make sure the visitor has a session so a later manual login can
		// regenerate it.
		if sess, err := s.ensureSession(ctx, w, r); err == nil {
			if err := s.saveSession(ctx, sess); err != nil {
				s.log.Warn().Err(err).Msg("login page: failed to persist session")
			}
		}

		var ssoLoginURL string
		keys, err := s.sso.RequestKeyPair(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("login page: key exchange failed, rendering without SSO link")
			s.metrics.KeyExchanges.WithLabelValues("failure").Inc()
		} else {
			s.metrics.KeyExchanges.WithLabelValues("success").Inc()
			ssoLoginURL = s.sso.SilentLoginURL(keys.Public)
		}

		data := LoginPageData{
			AppName:     s.config.AppName,
			SSOLoginURL: ssoLoginURL,
			Error:       r.URL.Query().Get("error"),
			Email:       r.URL.Query().Get("email"),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginTmpl.Execute(w, data); err != nil {
			s.log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		if email == "" || password == "" {
			s.renderLoginError(w, r, "Email dan kata sandi wajib diisi", email)
			return
		}

		user, err := s.users.GetByEmail(email)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrUserNotFound) {
				s.log.Err(err).Msg("login: failed to look up user")
			}
			s.renderLoginError(w, r, "Email atau kata sandi salah", email)
			return
		}

		if !users.CheckPasswordHash(password, user.PasswordHash) {
			s.renderLoginError(w, r, "Email atau kata sandi salah", email)
			return
		}

		sess, err := s.ensureSession(ctx, w, r)
		if err != nil {
			s.log.Err(err).Msg("login: failed to load session")
			http.Error(w, "Failed to establish session", http.StatusInternalServerError)
			return
		}

		returnURL := sess.ReturnURL

		if _, err := s.regenerateSession(ctx, w, r, sess, user.ID); err != nil {
			s.log.Err(err).Msg("login: failed to establish session")
			http.Error(w, "Failed to establish session", http.StatusInternalServerError)
			return
		}

		if err := s.users.SetLastLogin(user.Email); err != nil {
			s.log.Warn().Err(err).Msg("login: failed to record last login")
		}

		if returnURL == "" || returnURL == RouteIndex {
			returnURL = RouteDashboard
		}
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// LogoutHandler tears the session down (POST /logout). The browser is sent
// to the provider's logout endpoint as well: clearing only the local session
// would let the provider re-authenticate the user on the next visit.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.destroySession(r.Context(), w, r); err != nil {
			s.log.Err(err).Msg("logout: failed to destroy session")
		}
		http.Redirect(w, r, s.sso.LogoutURL(), http.StatusSeeOther)
	}
}

// renderLoginError redirects to the login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectURL := RouteLogin + "?error=" + url.QueryEscape(errorMsg)
	if email != "" {
		redirectURL += "&email=" + url.QueryEscape(email)
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}
