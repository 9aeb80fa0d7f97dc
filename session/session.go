package session

import "time"

// Session is the per-browser-session record backing the SSO login flow.
// It is the only state shared between requests of one browser; handlers
// receive it explicitly and persist it through a Repo.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"` // Empty while anonymous
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Silent SSO login state. SilentLoginAttempted bounds the automatic
	// provider redirect to one per session lifetime.
	SilentLoginAttempted bool   `json:"silent_login_attempted"`
	SSOPublicKey         string `json:"sso_public_key,omitempty"`
	SSOPrivateKey        string `json:"sso_private_key,omitempty"`

	// ReturnURL is the destination the user originally requested, restored
	// after the callback completes.
	ReturnURL string `json:"return_url,omitempty"`
}

// Authenticated reports whether the session is bound to a user.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}
