package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-checkout/internal/checkout"
	"github.com/kirinyoku/tix-checkout/internal/repository"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps checkout sessions as JSON with a sliding TTL.
type SessionStore struct {
	cache *Cache
	ttl   time.Duration
}

func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{cache: cache, ttl: ttl}
}

// Save writes s and restarts its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *checkout.Session) error {
	const op = "redis.SessionStore.Save"

	return wrap(op, SetJSON(ctx, s.cache, KeySession(sess.ID), sess, s.ttl))
}

// Load returns repository.ErrNotFound for unknown or expired sessions.
func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	const op = "redis.SessionStore.Load"

	sess, ok, err := GetJSON[checkout.Session](ctx, s.cache, KeySession(id))
	if err != nil {
		return nil, wrap(op, err)
	}
	if !ok {
		return nil, wrap(op, repository.ErrNotFound)
	}

	return &sess, nil
}

// Lock guards a session against concurrent payment submissions.
func (s *SessionStore) Lock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error) {
	const op = "redis.SessionStore.Lock"

	ok, err := s.cache.rdb.SetNX(ctx, KeySessionLock(id), "LOCK", ttl).Result()
	if err != nil && err != redis.Nil {
		return false, wrap(op, err)
	}

	return ok, nil
}

func (s *SessionStore) Unlock(ctx context.Context, id uuid.UUID) error {
	const op = "redis.SessionStore.Unlock"

	return wrap(op, s.cache.Del(ctx, KeySessionLock(id)))
}
