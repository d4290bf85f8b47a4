package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - notifications:unread:{user_id} - badge count, BadgeTTL

// CacheConfig contains configuration for caching
type CacheConfig struct {
	BadgeTTL time.Duration // TTL for unread badge counts (default 30s)
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BadgeTTL: 30 * time.Second,
	}
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	if config.BadgeTTL <= 0 {
		config.BadgeTTL = DefaultCacheConfig().BadgeTTL
	}
	return &CacheStore{
		client: client,
		config: config,
	}
}

func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:unread:%s", userID.String())
}

// GetUnreadCount returns the cached badge count. ok is false on a cache miss.
func (c *CacheStore) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	data, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err == goredis.Nil {
		return 0, false, nil // Cache miss
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(data)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt badge cache entry: %w", err)
	}
	return n, true, nil
}

func (c *CacheStore) SetUnreadCount(ctx context.Context, userID uuid.UUID, count int) error {
	return c.client.Set(ctx, unreadKey(userID), count, c.config.BadgeTTL).Err()
}

func (c *CacheStore) InvalidateUnreadCount(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, unreadKey(userID)).Err()
}
