package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ordersvc/internal/models"
)

// ErrCacheMiss is returned when no cached copy exists for an order id.
var ErrCacheMiss = errors.New("cache miss")

// OrderCache is a Redis read-through cache for order lookups. Entries are
// written on read, invalidated on every mutation, and expire after the TTL.
type OrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOrderCache creates a new OrderCache.
func NewOrderCache(rdb *redis.Client, ttl time.Duration) *OrderCache {
	return &OrderCache{rdb: rdb, ttl: ttl}
}

func orderKey(orderID string) string {
	return "order:" + orderID
}

// Get returns the cached order or ErrCacheMiss.
func (c *OrderCache) Get(ctx context.Context, orderID string) (*models.Order, error) {
	raw, err := c.rdb.Get(ctx, orderKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order %s from cache: %w", orderID, err)
	}

	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to decode cached order %s: %w", orderID, err)
	}
	return &order, nil
}

// Set stores an order in the cache.
func (c *OrderCache) Set(ctx context.Context, order *models.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order %s for cache: %w", order.ID, err)
	}
	if err := c.rdb.Set(ctx, orderKey(order.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache order %s: %w", order.ID, err)
	}
	return nil
}

// Invalidate drops the cached copy of an order.
func (c *OrderCache) Invalidate(ctx context.Context, orderID string) error {
	if err := c.rdb.Del(ctx, orderKey(orderID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached order %s: %w", orderID, err)
	}
	return nil
}
