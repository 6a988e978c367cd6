package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"go.uber.org/zap"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetNetwork loads a cached street graph by its cell key. A miss and a
// corrupt entry both return (nil, nil); corrupt entries are deleted so the
// next request refetches.
func (r *cacheRepository) GetNetwork(ctx context.Context, key string) (*domain.StreetGraph, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var graph domain.StreetGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		r.logger.Warn("Failed to unmarshal cached network, evicting",
			zap.String("key", key), zap.Error(err))
		_ = r.Delete(ctx, key)
		return nil, nil
	}

	return &graph, nil
}

func (r *cacheRepository) SetNetwork(ctx context.Context, key string, graph *domain.StreetGraph, ttl time.Duration) error {
	data, err := json.Marshal(graph)
	if err != nil {
		r.logger.Error("Failed to marshal network", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("marshal network: %w", err)
	}

	return r.Set(ctx, key, data, ttl)
}
