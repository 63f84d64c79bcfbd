package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StorefrontCache invalidates the rendered public storefront for a shop.
// Invalidation is best effort: callers log failures, they never fail a
// webhook over a stale cache entry.
type StorefrontCache interface {
	Invalidate(ctx context.Context, shopSlug string) error
}

type redisStorefrontCache struct {
	client *redis.Client
}

func NewRedisStorefrontCache(addr, password string) StorefrontCache {
	return &redisStorefrontCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (c *redisStorefrontCache) Invalidate(ctx context.Context, shopSlug string) error {
	key := fmt.Sprintf("storefront:shop:%s", shopSlug)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate storefront cache %s: %w", key, err)
	}
	return nil
}
