package adapters

import (
	"context"
	"errors"
	"time"

	"envios-web/internal/core/cache"
)

// RedisTokenStore implements ports.TokenStore on the shared cache.
type RedisTokenStore struct {
	cache cache.Cache
}

// NewRedisTokenStore creates a new token store.
func NewRedisTokenStore(c cache.Cache) *RedisTokenStore {
	return &RedisTokenStore{cache: c}
}

func tokenKey(sid string) string {
	return "session:" + sid
}

// Load returns the token stored for sid.
func (s *RedisTokenStore) Load(ctx context.Context, sid string) (string, bool, error) {
	data, err := s.cache.Get(ctx, tokenKey(sid))
	if errors.Is(err, cache.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Save stores token until it expires.
func (s *RedisTokenStore) Save(ctx context.Context, sid, token string, ttl time.Duration) error {
	return s.cache.Set(ctx, tokenKey(sid), []byte(token), ttl)
}

// Delete removes the token of sid.
func (s *RedisTokenStore) Delete(ctx context.Context, sid string) error {
	return s.cache.Delete(ctx, tokenKey(sid))
}

// Ping checks redis.
func (s *RedisTokenStore) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
