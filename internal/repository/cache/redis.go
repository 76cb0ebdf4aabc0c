package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/geo-gateway/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dialTimeout   = 3 * time.Second
	ioTimeout     = 2 * time.Second
	healthTimeout = 2 * time.Second
)

// Redis - общее подключение: кеш геокодирования, стрим истории и статистика лимитера.
// Таймауты короткие: Redis не должен задерживать ответ клиенту, все его функции best-effort.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis подключается и проверяет соединение; при ошибке клиент закрывается
func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)

	return NewRedisFromClient(client, logger), nil
}

// NewRedisFromClient оборачивает готовый клиент (тесты, miniredis)
func NewRedisFromClient(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

// Close закрывает пул соединений
func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}

// Health - PING с ограничением по времени, используется в /health
func (r *Redis) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

// Client отдаёт клиент для стримов и статистики
func (r *Redis) Client() *redis.Client {
	return r.client
}
