package memoryrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/session"
)

var _ session.Repo = (*Repo)(nil)

// Repo is an in-memory implementation of session.Repo. Expired records are
// reaped lazily on Get.
type Repo struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

func New() *Repo {
	return &Repo{
		sessions: make(map[string]session.Session),
	}
}

func (r *Repo) Get(_ context.Context, id string) (session.Session, error) {
	if id == "" {
		return session.Session{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return session.Session{}, apperrors.ErrSessionNotFound
	}

	if s.Expired(time.Now()) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return session.Session{}, apperrors.ErrSessionNotFound
	}

	return s, nil
}

func (r *Repo) Put(_ context.Context, s session.Session) error {
	if s.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.ID] = s
	return nil
}

func (r *Repo) Delete(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
