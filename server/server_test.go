package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaris-dev/simaris-auth/internal/config"
	"github.com/simaris-dev/simaris-auth/server"
	"github.com/simaris-dev/simaris-auth/session"
	sessionmemory "github.com/simaris-dev/simaris-auth/session/memoryrepo"
	"github.com/simaris-dev/simaris-auth/sso"
	"github.com/simaris-dev/simaris-auth/users"
	usermemory "github.com/simaris-dev/simaris-auth/users/memoryrepo"
	"github.com/stretchr/testify/require"
)

// fakeProvider stands in for the external SSO API and counts key-exchange
// calls so tests can assert the gate's at-most-once behavior.
type fakeProvider struct {
	srv *httptest.Server

	mu           sync.Mutex
	keyExchanges int
	fail         bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/user-aplikasi/login-aplikasi" {
			http.NotFound(w, r)
			return
		}

		p.mu.Lock()
		p.keyExchanges++
		fail := p.fail
		p.mu.Unlock()

		if fail {
			http.Error(w, "provider down", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{
				"public_key":  "pub-key",
				"private_key": "priv-key",
			},
		})
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) exchangeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keyExchanges
}

func (p *fakeProvider) setFail(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = fail
}

type fixture struct {
	srv      *server.Server
	users    users.Repo
	sessions session.Repo
	provider *fakeProvider
	cfg      config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	provider := newFakeProvider(t)
	userRepo := usermemory.New()
	sessionRepo := sessionmemory.New()

	cfg := config.Config{
		AppName:     "SIMARIS Auth",
		Env:         "TEST",
		BaseURL:     "http://localhost:8080",
		SSOAPIURL:   provider.srv.URL,
		SSOClientID: "simaris",
		SSOTimeout:  time.Second,
		SessionTTL:  time.Hour,
	}

	ssoClient := sso.NewClient(sso.Options{
		APIURL:   cfg.SSOAPIURL,
		ClientID: cfg.SSOClientID,
		Timeout:  cfg.SSOTimeout,
		Logger:   zerolog.Nop(),
	})

	srv, err := server.New(cfg, userRepo, sessionRepo, ssoClient)
	require.NoError(t, err)

	return &fixture{
		srv:      srv,
		users:    userRepo,
		sessions: sessionRepo,
		provider: provider,
		cfg:      cfg,
	}
}

// do performs a request against the server, optionally carrying the session
// cookie of a previous response.
func (f *fixture) do(t *testing.T, method, target string, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

// sessionCookie extracts the session cookie set by a response. When a
// response replaces the cookie (e.g. session regeneration), the last
// Set-Cookie header wins, as it does in a browser.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "simaris_session" {
			found = c
		}
	}
	if found == nil {
		t.Fatal("no session cookie in response")
	}
	return found
}

// storedSession loads the repo record behind a cookie
func (f *fixture) storedSession(t *testing.T, cookie *http.Cookie) session.Session {
	t.Helper()

	s, err := f.sessions.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	return s
}

// seedAuthenticatedSession creates a user plus a session bound to it and
// returns the cookie a browser would hold.
func (f *fixture) seedAuthenticatedSession(t *testing.T, email string) (*users.User, *http.Cookie) {
	t.Helper()

	user := &users.User{Email: email, Name: "Test User", Roles: []users.RoleType{users.RoleOwnerRisk}}
	require.NoError(t, f.users.Upsert(user))

	sess := session.Session{
		ID:        "seeded-session",
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.sessions.Put(context.Background(), sess))

	return user, &http.Cookie{Name: "simaris_session", Value: sess.ID}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	require.Zero(t, f.provider.exchangeCount())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}
