package usecase

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/ratelimit"
)

// Операции, которые учитываются лимитером и статистикой
const (
	OpNearby  = "nearby"
	OpGeocode = "geocode"
	OpReverse = "reverse"
	OpMarker  = "marker"
	OpHistory = "history"
)

const statsWriteTimeout = 250 * time.Millisecond

// Limiter - решение о пропуске запроса клиента
type Limiter interface {
	Admit(identity string) ratelimit.Decision
}

// RateGate - общий для всех операций шлюза контроль квоты
type RateGate struct {
	limiter Limiter
	stats   repository.RateLimitStatsStore
	logger  *zap.Logger
}

// NewRateGate - создание нового RateGate; stats может быть nil
func NewRateGate(limiter Limiter, stats repository.RateLimitStatsStore, logger *zap.Logger) *RateGate {
	return &RateGate{
		limiter: limiter,
		stats:   stats,
		logger:  logger,
	}
}

// Check засчитывает запрос и возвращает RATE_LIMIT_EXCEEDED при превышении квоты
func (g *RateGate) Check(ctx context.Context, clientID, operation string) (*ratelimit.Decision, error) {
	decision := g.limiter.Admit(clientID)
	g.record(ctx, clientID, operation, decision.Allowed)

	if decision.Allowed {
		return &decision, nil
	}

	g.logger.Info("Rate limit exceeded",
		zap.String("client_id", clientID),
		zap.String("operation", operation),
		zap.Time("reset_at", decision.ResetAt))

	return &decision, errors.ErrRateLimited.WithDetails(map[string]interface{}{
		"limit":       decision.Limit,
		"retry_after": int(math.Ceil(decision.RetryAfter.Seconds())),
		"reset_at":    decision.ResetAt.UTC().Format(time.RFC3339),
	})
}

func (g *RateGate) record(ctx context.Context, clientID, operation string, allowed bool) {
	if g.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, statsWriteTimeout)
	defer cancel()

	err := g.stats.Record(ctx, domain.RateLimitEvent{
		ClientID:  clientID,
		Operation: operation,
		Allowed:   allowed,
		At:        time.Now(),
	})
	if err != nil {
		g.logger.Warn("Failed to record rate limit stats", zap.Error(err))
	}
}
