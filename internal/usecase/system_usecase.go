package usecase

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/pkg/utils"
	"github.com/geo-gateway/internal/usecase/dto"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	ServiceConnected     = "connected"
	ServiceDisconnected  = "disconnected"
	ServiceNotConfigured = "not configured"
)

// HealthChecker - проверка одной зависимости (Redis, Postgres)
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SystemUseCase - служебные эндпоинты: health, категории, ключи
type SystemUseCase struct {
	checkers map[string]HealthChecker
	apiKeys  map[string]string
	logger   *zap.Logger
}

// NewSystemUseCase - создание SystemUseCase. Зависимость с nil checker считается не настроенной.
func NewSystemUseCase(checkers map[string]HealthChecker, apiKeys map[string]string, logger *zap.Logger) *SystemUseCase {
	return &SystemUseCase{
		checkers: checkers,
		apiKeys:  apiKeys,
		logger:   logger,
	}
}

// Health пингует зависимости. Сервис нездоров, если хотя бы одна настроенная зависимость недоступна.
func (uc *SystemUseCase) Health(ctx context.Context) *dto.HealthResponse {
	resp := &dto.HealthResponse{
		Status:    StatusHealthy,
		Services:  make(map[string]string, len(uc.checkers)),
		Timestamp: time.Now().UTC(),
	}

	names := make([]string, 0, len(uc.checkers))
	for name := range uc.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checker := uc.checkers[name]
		if checker == nil {
			resp.Services[name] = ServiceNotConfigured
			continue
		}

		if err := checker.Health(ctx); err != nil {
			uc.logger.Error("Health check failed", zap.String("service", name), zap.Error(err))
			resp.Services[name] = ServiceDisconnected
			resp.Status = StatusUnhealthy
			continue
		}
		resp.Services[name] = ServiceConnected
	}

	return resp
}

// Categories - словарь тегов amenity
func (uc *SystemUseCase) Categories() *dto.CategoriesResponse {
	categories := domain.Categories()
	return &dto.CategoriesResponse{
		Categories: categories,
		Total:      len(categories),
	}
}

// APIKeys - ключи внешних сервисов в маскированном виде
func (uc *SystemUseCase) APIKeys() *dto.APIKeysResponse {
	return &dto.APIKeysResponse{Keys: utils.MaskKeys(uc.apiKeys)}
}
