package sso_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/sso"
	"github.com/stretchr/testify/require"
)

func newClient(apiURL string) *sso.Client {
	return sso.NewClient(sso.Options{
		APIURL:   apiURL,
		ClientID: "simaris",
		Timeout:  time.Second,
		Logger:   zerolog.Nop(),
	})
}

func TestRequestKeyPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/user-aplikasi/login-aplikasi", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "simaris", body["client_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{
				"public_key":  "pub-123",
				"private_key": "priv-456",
			},
		})
	}))
	defer srv.Close()

	keys, err := newClient(srv.URL).RequestKeyPair(context.Background())
	require.NoError(t, err)
	require.Equal(t, "pub-123", keys.Public)
	require.Equal(t, "priv-456", keys.Private)
}

func TestRequestKeyPairNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).RequestKeyPair(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnexpectedResponse)
}

func TestRequestKeyPairMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"public_key": "only-public"},
		})
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).RequestKeyPair(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnexpectedResponse)
}

func TestRequestKeyPairUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // down before the call

	_, err := newClient(srv.URL).RequestKeyPair(context.Background())
	require.ErrorIs(t, err, apperrors.ErrProviderUnreachable)
}

func TestProviderURLs(t *testing.T) {
	c := newClient("https://sso.example.ac.id")

	require.Equal(t,
		"https://sso.example.ac.id/user-aplikasi/silent-login-microsoft?public_key=pub%2Bkey",
		c.SilentLoginURL("pub+key"))
	require.Equal(t, "https://sso.example.ac.id/user/logout", c.LogoutURL())
}
