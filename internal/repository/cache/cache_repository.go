package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geo-gateway/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKeyPrefix - общий префикс ключей сервиса в Redis
const DefaultKeyPrefix = "geo-gateway"

// ErrNoTTL - запись без срока жизни в кеш не кладётся
var ErrNoTTL = errors.New("cache entry requires positive ttl")

type cacheRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewCacheRepository - кеш ответов геокодера. Ошибки логируются как warn:
// вызывающий код продолжает работу без кеша.
func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return NewCacheRepositoryWithPrefix(redis, DefaultKeyPrefix)
}

// NewCacheRepositoryWithPrefix позволяет разделить кеш нескольких инсталляций в одном Redis
func NewCacheRepositoryWithPrefix(redis *Redis, prefix string) repository.CacheRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &cacheRepository{
		client: redis.Client(),
		prefix: prefix,
		logger: redis.logger.With(zap.String("component", "cache")),
	}
}

func (r *cacheRepository) key(k string) string {
	return r.prefix + ":" + k
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		r.logger.Debug("Cache miss", zap.String("key", key))
		return nil, nil
	case err != nil:
		r.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get %q: %w", key, err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key), zap.Int("bytes", len(val)))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrNoTTL
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete %q: %w", key, err)
	}
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists %q: %w", key, err)
	}
	return n > 0, nil
}
