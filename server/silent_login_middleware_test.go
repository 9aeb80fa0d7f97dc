package server_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateRedirectsFirstVisit(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/dashboard", "", nil)

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t,
		f.cfg.SSOAPIURL+"/user-aplikasi/silent-login-microsoft?public_key=pub-key",
		w.Header().Get("Location"))
	require.Equal(t, 1, f.provider.exchangeCount())

	// The session must be persisted before the redirect leaves the process
	sess := f.storedSession(t, sessionCookie(t, w))
	require.True(t, sess.SilentLoginAttempted)
	require.Equal(t, "pub-key", sess.SSOPublicKey)
	require.Equal(t, "priv-key", sess.SSOPrivateKey)
	require.Equal(t, "/dashboard", sess.ReturnURL)
	require.False(t, sess.Authenticated())
}

func TestGateAttemptsOncePerSession(t *testing.T) {
	f := newFixture(t)

	first := f.do(t, http.MethodGet, "/dashboard", "", nil)
	cookie := sessionCookie(t, first)
	require.Equal(t, 1, f.provider.exchangeCount())

	// Same browser again: the attempted flag suppresses the flow, so the
	// request falls through to the auth redirect instead.
	second := f.do(t, http.MethodGet, "/dashboard", "", cookie)
	require.Equal(t, http.StatusSeeOther, second.Code)
	require.True(t, strings.HasPrefix(second.Header().Get("Location"), "/login?error="))
	require.Equal(t, 1, f.provider.exchangeCount())
}

func TestGateFailedExchangeDegradesToPassThrough(t *testing.T) {
	f := newFixture(t)
	f.provider.setFail(true)

	w := f.do(t, http.MethodGet, "/dashboard", "", nil)

	// A down provider never blocks the page: the request reaches the next
	// handler, which sends an unauthenticated visitor to the login page.
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login?error="))
	require.Equal(t, 1, f.provider.exchangeCount())

	cookie := sessionCookie(t, w)
	sess := f.storedSession(t, cookie)
	require.True(t, sess.SilentLoginAttempted)
	require.Empty(t, sess.SSOPublicKey)

	// No retry on subsequent requests in the same session
	f.do(t, http.MethodGet, "/dashboard", "", cookie)
	require.Equal(t, 1, f.provider.exchangeCount())
}

func TestGateSkipsAuthenticatedSession(t *testing.T) {
	f := newFixture(t)
	user, cookie := f.seedAuthenticatedSession(t, "jane@example.ac.id")

	w := f.do(t, http.MethodGet, "/dashboard", "", cookie)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), user.Email)
	require.Zero(t, f.provider.exchangeCount())
}

func TestGateExemptsCallbackRoute(t *testing.T) {
	f := newFixture(t)

	// Even a brand-new session must not be redirected from the callback
	// path; a bad token lands on the login page instead.
	w := f.do(t, http.MethodGet, "/callback?token=bad", "", nil)

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login?error="))
	require.Zero(t, f.provider.exchangeCount())
}

func TestGateExemptsManualLoginRoute(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/login", "", nil)

	// Rendered, not redirected to the provider. The page performs its own
	// key exchange for the SSO link; that call is not a gate attempt.
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "form")

	cookie := sessionCookie(t, w)
	sess := f.storedSession(t, cookie)
	require.False(t, sess.SilentLoginAttempted)
}
