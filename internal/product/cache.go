package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds single-product lookups. A miss is reported as (nil, nil).
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	Set(ctx context.Context, p *Product) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: failed to get product %s: %w", id, err)
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("cache: failed to decode product %s: %w", id, err)
	}
	return &p, nil
}

func (c *redisCache) Set(ctx context.Context, p *Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache: failed to encode product %s: %w", p.ID, err)
	}
	if err := c.client.Set(ctx, cacheKey(p.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set product %s: %w", p.ID, err)
	}
	return nil
}

func (c *redisCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete product %s: %w", id, err)
	}
	return nil
}

type noopCache struct{}

// NoopCache disables product caching.
func NoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (*Product, error) { return nil, nil }
func (noopCache) Set(context.Context, *Product) error               { return nil }
func (noopCache) Invalidate(context.Context, uuid.UUID) error       { return nil }
