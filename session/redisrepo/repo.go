package redisrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/session"
)

var _ session.Repo = (*Repo)(nil)

const defaultPrefix = "simaris:session:"

// Repo is a Redis-backed implementation of session.Repo for deployments
// running more than one instance. Records carry their TTL on the Redis key,
// so expiry needs no reaper.
type Repo struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client) *Repo {
	return &Repo{client: client, prefix: defaultPrefix}
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}

func (r *Repo) Get(ctx context.Context, id string) (session.Session, error) {
	if id == "" {
		return session.Session{}, fmt.Errorf("sessionID is required")
	}

	raw, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return session.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("[redisrepo Get] failed to read session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return session.Session{}, fmt.Errorf("[redisrepo Get] failed to decode session: %w", err)
	}
	return s, nil
}

func (r *Repo) Put(ctx context.Context, s session.Session) error {
	if s.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("[redisrepo Put] failed to encode session: %w", err)
	}

	ttl := time.Duration(0)
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return r.Delete(ctx, s.ID)
		}
	}

	if err := r.client.Set(ctx, r.key(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("[redisrepo Put] failed to store session: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("sessionID is required")
	}

	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("[redisrepo Delete] failed to delete session: %w", err)
	}
	return nil
}
