package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go-user-notify/internal/domain/model"
)

// CacheRepository stores opaque string values in Redis with an optional TTL.
type CacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

func (r *CacheRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache get %s: %w", key, err)
	}

	return value, nil
}

func (r *CacheRepository) Set(ctx context.Context, key string, value model.CacheValue) error {
	var ttl time.Duration
	if value.TTL != nil {
		ttl = time.Duration(*value.TTL) * time.Second
	}

	if err := r.client.Set(ctx, key, value.Value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	if deleted == 0 {
		return ErrCacheKeyNotFound
	}

	return nil
}
