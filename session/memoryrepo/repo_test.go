package memoryrepo_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/session"
	"github.com/simaris-dev/simaris-auth/session/memoryrepo"
	"github.com/stretchr/testify/require"
)

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memoryrepo.New()

	s := session.Session{
		ID:                   "sess-1",
		SilentLoginAttempted: true,
		SSOPublicKey:         "pub",
		SSOPrivateKey:        "priv",
		ExpiresAt:            time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Put(ctx, s))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, got.SilentLoginAttempted)
	require.Equal(t, "pub", got.SSOPublicKey)
	require.False(t, got.Authenticated())
}

func TestGetMissing(t *testing.T) {
	repo := memoryrepo.New()

	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestGetExpired(t *testing.T) {
	ctx := context.Background()
	repo := memoryrepo.New()

	s := session.Session{ID: "sess-1", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Put(ctx, s))

	_, err := repo.Get(ctx, "sess-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := memoryrepo.New()

	require.NoError(t, repo.Put(ctx, session.Session{ID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, repo.Delete(ctx, "sess-1"))

	_, err := repo.Get(ctx, "sess-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	// Deleting an unknown session is not an error
	require.NoError(t, repo.Delete(ctx, "sess-1"))
}
