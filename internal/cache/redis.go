// Package cache connects to Redis and keeps event dedup and request
// idempotency keys.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/config"
)

const (
	// dedup:{consumer}:{event_id}
	keyDedup = "dedup:%s:%s"
	// idem:{scope}:{user_id}:{key} -> resource id
	keyIdempotency = "idem:%s:%s:%s"
)

func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return rdb, nil
}

// Deduper remembers processed ids for ttl.
type Deduper struct {
	rdb      *redis.Client
	consumer string
	ttl      time.Duration
}

func NewDeduper(rdb *redis.Client, consumer string, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, consumer: consumer, ttl: ttl}
}

// Claim reports whether id is seen for the first time.
func (d *Deduper) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, fmt.Sprintf(keyDedup, d.consumer, id), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache: dedup claim %s: %w", id, err)
	}
	return ok, nil
}

// Release forgets id so a failed attempt can be retried.
func (d *Deduper) Release(ctx context.Context, id string) {
	if err := d.rdb.Del(ctx, fmt.Sprintf(keyDedup, d.consumer, id)).Err(); err != nil {
		log.Warn().Err(err).Str("id", id).Msg("cache: failed to release dedup key")
	}
}

// Idempotency maps client supplied keys to the resource they created.
type Idempotency struct {
	rdb   *redis.Client
	scope string
	ttl   time.Duration
}

func NewIdempotency(rdb *redis.Client, scope string, ttl time.Duration) *Idempotency {
	return &Idempotency{rdb: rdb, scope: scope, ttl: ttl}
}

// Lookup returns the stored resource id, or "" when key is unused.
func (i *Idempotency) Lookup(ctx context.Context, owner, key string) (string, error) {
	v, err := i.rdb.Get(ctx, fmt.Sprintf(keyIdempotency, i.scope, owner, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache: idempotency lookup: %w", err)
	}
	return v, nil
}

func (i *Idempotency) Remember(ctx context.Context, owner, key, resourceID string) error {
	if err := i.rdb.Set(ctx, fmt.Sprintf(keyIdempotency, i.scope, owner, key), resourceID, i.ttl).Err(); err != nil {
		return fmt.Errorf("cache: idempotency store: %w", err)
	}
	return nil
}
