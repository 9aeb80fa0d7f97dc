package server

import (
	"net/http"
)

// SilentLoginGate decides, per request, whether to attempt an automatic SSO
// redirect. Guards are evaluated in order; every guard ends in pass-through,
// so only the attempt branch produces a response of its own.
//
// The attempt flag bounds the flow to one provider redirect per session
// lifetime: a down provider degrades to normal page rendering instead of
// retrying on every request.
func (s *Server) SilentLoginGate() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Callback and manual-login routes are never gated: the first
			// would loop the browser back to the provider, the second lets
			// the user opt out of the silent flow.
			if ClassifyRoute(r.URL.Path) != RouteClassOther {
				s.metrics.GateDecisions.WithLabelValues("exempt_route").Inc()
				next(w, r)
				return
			}

			sess, err := s.ensureSession(ctx, w, r)
			if err != nil {
				s.log.Err(err).Msg("silent login: failed to load session")
				s.metrics.GateDecisions.WithLabelValues("session_error").Inc()
				next(w, r)
				return
			}

			if sess.Authenticated() {
				s.metrics.GateDecisions.WithLabelValues("authenticated").Inc()
				next(w, r)
				return
			}

			if sess.SilentLoginAttempted {
				s.metrics.GateDecisions.WithLabelValues("already_attempted").Inc()
				next(w, r)
				return
			}

			keys, err := s.sso.RequestKeyPair(ctx)
			if err != nil {
				// Mark the attempt anyway: a down provider must not block
				// page rendering or be retried on every request.
				s.log.Warn().Err(err).Msg("silent login: key exchange failed")
				s.metrics.KeyExchanges.WithLabelValues("failure").Inc()
				s.metrics.GateDecisions.WithLabelValues("provider_error").Inc()

				sess.SilentLoginAttempted = true
				if err := s.saveSession(ctx, sess); err != nil {
					s.log.Err(err).Msg("silent login: failed to persist session")
				}
				next(w, r)
				return
			}

			s.metrics.KeyExchanges.WithLabelValues("success").Inc()

			sess.SilentLoginAttempted = true
			sess.SSOPublicKey = keys.Public
			sess.SSOPrivateKey = keys.Private
			sess.ReturnURL = r.URL.RequestURI()

			// The session must be persisted before the redirect is issued:
			// the redirect leaves the process and the callback depends on
			// the stored state.
			if err := s.saveSession(ctx, sess); err != nil {
				s.log.Err(err).Msg("silent login: failed to persist session")
				s.metrics.GateDecisions.WithLabelValues("session_error").Inc()
				next(w, r)
				return
			}

			s.metrics.GateDecisions.WithLabelValues("redirect").Inc()
			http.Redirect(w, r, s.sso.SilentLoginURL(keys.Public), http.StatusSeeOther)
		}
	}
}
