package adapters

import (
	"context"
	"time"

	"envios-web/internal/core/cache"
	"envios-web/internal/features/quote/domain"
)

// RedisDraftStore implements ports.DraftStore on the shared cache.
type RedisDraftStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisDraftStore creates a store whose drafts expire after ttl.
func NewRedisDraftStore(c cache.Cache, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{cache: c, ttl: ttl}
}

func draftKey(sid string) string {
	return "quote:" + sid
}

// Save stores the draft, replacing any previous one.
func (s *RedisDraftStore) Save(ctx context.Context, sid string, d domain.Draft) error {
	return cache.SetJSON(ctx, s.cache, draftKey(sid), d, s.ttl)
}

// Load returns the draft of sid.
func (s *RedisDraftStore) Load(ctx context.Context, sid string) (domain.Draft, bool, error) {
	var d domain.Draft
	ok, err := cache.GetJSON(ctx, s.cache, draftKey(sid), &d)
	return d, ok, err
}

// Delete drops the draft of sid.
func (s *RedisDraftStore) Delete(ctx context.Context, sid string) error {
	return s.cache.Delete(ctx, draftKey(sid))
}
