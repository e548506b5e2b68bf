package adapters

import (
	"context"
	"time"

	"envios-web/internal/core/cache"
	"envios-web/internal/features/orders/domain"
)

// RedisReceiptStore implements ports.ReceiptStore on the shared cache.
type RedisReceiptStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisReceiptStore creates a store whose receipts expire after ttl.
func NewRedisReceiptStore(c cache.Cache, ttl time.Duration) *RedisReceiptStore {
	return &RedisReceiptStore{cache: c, ttl: ttl}
}

func receiptKey(sid, orderID string) string {
	return "receipt:" + sid + ":" + orderID
}

// Save stores r, replacing the previous receipt of the same order.
func (s *RedisReceiptStore) Save(ctx context.Context, sid string, r domain.Receipt) error {
	return cache.SetJSON(ctx, s.cache, receiptKey(sid, r.OrderID), r, s.ttl)
}

// Load returns the receipt of orderID.
func (s *RedisReceiptStore) Load(ctx context.Context, sid, orderID string) (domain.Receipt, bool, error) {
	var r domain.Receipt
	ok, err := cache.GetJSON(ctx, s.cache, receiptKey(sid, orderID), &r)
	return r, ok, err
}

// Delete drops the receipt of orderID.
func (s *RedisReceiptStore) Delete(ctx context.Context, sid, orderID string) error {
	return s.cache.Delete(ctx, receiptKey(sid, orderID))
}
