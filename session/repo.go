package session

import "context"

// Repo stores sessions by ID. Implementations must return
// apperrors.ErrSessionNotFound for unknown or expired IDs.
type Repo interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}
