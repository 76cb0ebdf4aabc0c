package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

const (
	fieldAllowed = "allowed"
	fieldDenied  = "denied"
)

// RedisStatsStore хранит счётчики решений в хешах Redis:
// <prefix>:total (без TTL), <prefix>:operation и поминутные бакеты с TTL.
type RedisStatsStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStatsStore - создание хранилища статистики в Redis
func NewRedisStatsStore(client *redis.Client, prefix string, ttl time.Duration) repository.RateLimitStatsStore {
	if prefix == "" {
		prefix = "ratelimit:stats"
	}
	return &RedisStatsStore{
		client: client,
		prefix: strings.Trim(prefix, ":"),
		ttl:    ttl,
	}
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.RateLimitEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := fieldDenied
	if ev.Allowed {
		field = fieldAllowed
	}

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if op := strings.TrimSpace(ev.Operation); op != "" {
		pipe.HIncrBy(ctx, s.prefix+":operation", op+":"+field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record rate limit stats: %w", err)
	}
	return nil
}

func (s *RedisStatsStore) Totals(ctx context.Context) (int64, int64, error) {
	values, err := s.client.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return 0, 0, fmt.Errorf("read rate limit stats: %w", err)
	}

	allowed, _ := strconv.ParseInt(values[fieldAllowed], 10, 64)
	denied, _ := strconv.ParseInt(values[fieldDenied], 10, 64)
	return allowed, denied, nil
}

// MemoryStatsStore - счётчики в памяти процесса, для тестов и запуска без Redis
type MemoryStatsStore struct {
	mu          sync.Mutex
	allowed     int64
	denied      int64
	byOperation map[string][2]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byOperation: make(map[string][2]int64)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.RateLimitEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byOperation[ev.Operation]
	if ev.Allowed {
		s.allowed++
		c[0]++
	} else {
		s.denied++
		c[1]++
	}
	s.byOperation[ev.Operation] = c
	return nil
}

func (s *MemoryStatsStore) Totals(_ context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowed, s.denied, nil
}

// ByOperation возвращает (allowed, denied) для операции
func (s *MemoryStatsStore) ByOperation(op string) (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.byOperation[op]
	return c[0], c[1]
}
