package handler

import (
	"github.com/geo-gateway/internal/pkg/utils"
	"github.com/geo-gateway/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SystemHandler - служебные эндпоинты: здоровье, категории, ключи, статистика
type SystemHandler struct {
	systemUC SystemService
	statsUC  StatsProvider
	logger   *zap.Logger
}

// NewSystemHandler - создание нового SystemHandler
func NewSystemHandler(systemUC SystemService, statsUC StatsProvider, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		systemUC: systemUC,
		statsUC:  statsUC,
		logger:   logger,
	}
}

// Health godoc
// @Summary Состояние сервиса
// @Description Проверяет доступность Redis и PostgreSQL. Неподключенная зависимость не делает сервис нездоровым.
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	result := h.systemUC.Health(c.UserContext())
	if result.Status != usecase.StatusHealthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(result)
	}
	return c.JSON(result)
}

// Categories godoc
// @Summary Категории
// @Description Теги amenity, на которые отображаются разговорные названия
// @Tags System
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CategoriesResponse}
// @Router /api/v1/categories [get]
func (h *SystemHandler) Categories(c *fiber.Ctx) error {
	result := h.systemUC.Categories()
	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
	})
}

// APIKeys godoc
// @Summary Ключи внешних сервисов
// @Description Маскированные ключи: первые и последние 4 символа; null если ключ не задан
// @Tags System
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.APIKeysResponse}
// @Router /api/v1/keys [get]
func (h *SystemHandler) APIKeys(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.systemUC.APIKeys(), nil)
}

// GetStatistics godoc
// @Summary Статистика rate limiter'а
// @Description Разрешённые и отклонённые запросы, параметры окна и число отслеживаемых клиентов
// @Tags System
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.RateLimitStats}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *SystemHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.statsUC.GetStatistics(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stats, nil)
}
