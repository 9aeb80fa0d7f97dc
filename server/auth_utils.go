package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/session"
)

// sessionCookieName is the cookie carrying the opaque server-side session ID
const sessionCookieName = "simaris_session"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// currentSession loads the session referenced by the request cookie.
// Returns ErrSessionNotFound when there is no cookie or no matching record.
func (s *Server) currentSession(ctx context.Context, r *http.Request) (session.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return session.Session{}, apperrors.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, cookie.Value)
}

// ensureSession returns the request's session, creating a fresh anonymous
// one (and setting its cookie) when none exists. The fresh session is not
// persisted; callers persist it with saveSession after mutating it.
func (s *Server) ensureSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (session.Session, error) {
	sess, err := s.currentSession(ctx, r)
	if err == nil {
		return sess, nil
	}
	if !apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return session.Session{}, err
	}

	now := time.Now()
	sess = session.Session{
		ID:        generateRandomString(32),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}
	s.setSessionCookie(w, r, sess.ID, int(s.config.SessionTTL.Seconds()))
	return sess, nil
}

func (s *Server) saveSession(ctx context.Context, sess session.Session) error {
	return s.sessions.Put(ctx, sess)
}

// regenerateSession swaps the session ID at the authentication boundary to
// prevent session fixation: the old record is deleted, the data moves to a
// new ID bound to the user, and the cookie is replaced.
func (s *Server) regenerateSession(ctx context.Context, w http.ResponseWriter, r *http.Request, sess session.Session, userID string) (session.Session, error) {
	oldID := sess.ID

	sess.ID = generateRandomString(32)
	sess.UserID = userID
	sess.ReturnURL = ""

	if err := s.sessions.Put(ctx, sess); err != nil {
		return session.Session{}, err
	}
	if oldID != "" {
		if err := s.sessions.Delete(ctx, oldID); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete pre-auth session")
		}
	}

	s.setSessionCookie(w, r, sess.ID, int(time.Until(sess.ExpiresAt).Seconds()))
	return sess, nil
}

// destroySession invalidates the server-side record and expires the cookie.
// The next request starts a fresh anonymous session with the silent-login
// attempt flag cleared, making the browser eligible for silent login again.
func (s *Server) destroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := s.sessions.Delete(ctx, cookie.Value); err != nil {
			return err
		}
	}
	s.setSessionCookie(w, r, "", -1)
	return nil
}

// redirectWithError sends the browser to path with a localized error message
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(errorMsg), http.StatusSeeOther)
}
