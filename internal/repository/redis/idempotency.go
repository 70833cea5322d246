package redis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemLock   = "LOCK"
	idemPrefix = "RES:"
)

// IdempotencyStore remembers the response of a request by key.
// A key is either locked while the first request runs or holds its result.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, idemLock, lockTTL).Result()
}

// SaveResult stores the status code with the payload so replays answer the same way.
func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, status int, jsonPayload string) error {
	val := idemPrefix + encodeStatus(status) + jsonPayload
	return s.rdb.Set(ctx, key, val, s.ttl).Err()
}

func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (int, string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	if !strings.HasPrefix(v, idemPrefix) {
		return 0, "", false, nil
	}

	status, payload := decodeStatus(strings.TrimPrefix(v, idemPrefix))

	return status, payload, true, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// encodeStatus renders a 3-digit HTTP status.
func encodeStatus(status int) string {
	if status < 100 || status > 999 {
		status = 200
	}
	return strconv.Itoa(status)
}

func decodeStatus(v string) (int, string) {
	if len(v) < 3 {
		return 200, v
	}
	n, err := strconv.Atoi(v[:3])
	if err != nil || n < 100 {
		return 200, v
	}
	return n, v[3:]
}
