package facade

import (
	"context"

	"go-user-notify/internal/domain/model"
)

// CacheRepository is the key-value storage contract.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value model.CacheValue) error
	Delete(ctx context.Context, key string) error
}

// CacheService exposes the generic key-value cache endpoints.
type CacheService struct {
	repo CacheRepository
}

func NewCacheService(repo CacheRepository) *CacheService {
	return &CacheService{repo: repo}
}

func (s *CacheService) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

func (s *CacheService) Set(ctx context.Context, key string, value model.CacheValue) error {
	return s.repo.Set(ctx, key, value)
}

func (s *CacheService) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}
