package sso

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
)

// Provider endpoints, relative to the SSO API base URL.
const (
	keyExchangePath = "/user-aplikasi/login-aplikasi"
	silentLoginPath = "/user-aplikasi/silent-login-microsoft"
	logoutPath      = "/user/logout"
)

// KeyPair is the short-lived key pair issued by the provider to initiate a
// federated login handshake.
type KeyPair struct {
	Public  string
	Private string
}

// Client talks to the external SSO provider's key-exchange API.
type Client struct {
	apiURL     string
	clientID   string
	httpClient *http.Client
	log        zerolog.Logger
}

// Options configures a Client.
type Options struct {
	APIURL   string
	ClientID string
	// Timeout bounds the key-exchange call; a slow provider must not stall
	// page rendering indefinitely. Defaults to 5s.
	Timeout time.Duration
	// InsecureSkipVerify disables certificate verification against the
	// provider. Off by default; only for providers with broken chains.
	InsecureSkipVerify bool
	Logger             zerolog.Logger
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	transport := http.DefaultTransport
	if opts.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}

	return &Client{
		apiURL:   opts.APIURL,
		clientID: opts.ClientID,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: opts.Logger.With().Str("component", "sso-client").Logger(),
	}
}

type keyExchangeRequest struct {
	ClientID string `json:"client_id"`
}

type keyExchangeResponse struct {
	Data struct {
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
	} `json:"data"`
}

// RequestKeyPair obtains a fresh key pair from the provider. It fails with
// ErrProviderUnreachable on transport errors and ErrUnexpectedResponse when
// the provider answers with a non-success status or a body missing the
// expected fields.
func (c *Client) RequestKeyPair(ctx context.Context) (KeyPair, error) {
	body, err := json.Marshal(keyExchangeRequest{ClientID: c.clientID})
	if err != nil {
		return KeyPair{}, apperrors.Wrapf(err, "[sso RequestKeyPair] failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+keyExchangePath, bytes.NewReader(body))
	if err != nil {
		return KeyPair{}, apperrors.Wrapf(err, "[sso RequestKeyPair] failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("key exchange transport failure")
		return KeyPair{}, apperrors.Wrapf(apperrors.ErrProviderUnreachable, "[sso RequestKeyPair] %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("key exchange rejected")
		return KeyPair{}, apperrors.Wrapf(apperrors.ErrUnexpectedResponse, "[sso RequestKeyPair] status %d", resp.StatusCode)
	}

	var decoded keyExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return KeyPair{}, apperrors.Wrapf(apperrors.ErrUnexpectedResponse, "[sso RequestKeyPair] %v", err)
	}

	if decoded.Data.PublicKey == "" || decoded.Data.PrivateKey == "" {
		return KeyPair{}, apperrors.Wrapf(apperrors.ErrUnexpectedResponse, "[sso RequestKeyPair] response missing key fields")
	}

	return KeyPair{
		Public:  decoded.Data.PublicKey,
		Private: decoded.Data.PrivateKey,
	}, nil
}

// SilentLoginURL is the provider endpoint the browser is redirected to when
// attempting a non-interactive login, parameterized by the public key.
func (c *Client) SilentLoginURL(publicKey string) string {
	return c.apiURL + silentLoginPath + "?public_key=" + url.QueryEscape(publicKey)
}

// LogoutURL is the provider endpoint that clears the federated session.
// Local logout alone is insufficient: the provider would immediately
// re-authenticate the user on the next silent attempt.
func (c *Client) LogoutURL() string {
	return c.apiURL + logoutPath
}
