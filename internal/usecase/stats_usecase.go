package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
)

// LimiterInfo - параметры и размер таблицы лимитера
type LimiterInfo interface {
	Limit() int
	Window() time.Duration
	Len() int
}

// StatsUseCase отдаёт счётчики решений rate limiter'а
type StatsUseCase struct {
	limiter LimiterInfo
	store   repository.RateLimitStatsStore
	logger  *zap.Logger
}

// NewStatsUseCase создает новый экземпляр StatsUseCase; store может быть nil
func NewStatsUseCase(limiter LimiterInfo, store repository.RateLimitStatsStore, logger *zap.Logger) *StatsUseCase {
	return &StatsUseCase{
		limiter: limiter,
		store:   store,
		logger:  logger,
	}
}

// GetStatistics возвращает текущие счётчики
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*domain.RateLimitStats, error) {
	stats := &domain.RateLimitStats{
		Limit:     uc.limiter.Limit(),
		Window:    uc.limiter.Window().String(),
		Clients:   uc.limiter.Len(),
		FetchedAt: time.Now().UTC(),
	}

	if uc.store == nil {
		return stats, nil
	}

	allowed, denied, err := uc.store.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("get rate limit totals: %w", err)
	}
	stats.Allowed = allowed
	stats.Denied = denied

	uc.logger.Debug("Rate limit statistics fetched",
		zap.Int64("allowed", allowed),
		zap.Int64("denied", denied))

	return stats, nil
}
