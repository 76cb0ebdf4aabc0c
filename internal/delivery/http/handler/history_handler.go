package handler

import (
	"github.com/geo-gateway/internal/delivery/http/middleware"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/pkg/utils"
	"github.com/geo-gateway/internal/pkg/validator"
	"github.com/geo-gateway/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HistoryHandler - маркеры и история для офлайн-синхронизации
type HistoryHandler struct {
	historyUC HistoryService
	logger    *zap.Logger
}

// NewHistoryHandler - создание нового HistoryHandler
func NewHistoryHandler(historyUC HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		historyUC: historyUC,
		logger:    logger,
	}
}

// SaveMarker godoc
// @Summary Сохранить маркер
// @Description Принимает маркер пользователя к асинхронной записи. Повторная отправка с тем же id обновляет маркер.
// @Tags History
// @Accept json
// @Produce json
// @Param X-Client-ID header string false "Идентификатор клиента"
// @Param request body dto.MarkerRequest true "Маркер"
// @Success 202 {object} utils.SuccessResponse{data=dto.MarkerAcceptedResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/history/markers [post]
func (h *HistoryHandler) SaveMarker(c *fiber.Ctx) error {
	var req dto.MarkerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": "invalid JSON",
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.historyUC.SaveMarker(c.UserContext(), middleware.GetClientID(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusAccepted)
	return utils.SendSuccess(c, result, nil)
}

// List godoc
// @Summary История клиента
// @Description Последние поиски и маркеры клиента, новые первыми
// @Tags History
// @Produce json
// @Param X-Client-ID header string false "Идентификатор клиента"
// @Param kind query []string false "Фильтр по типу: nearby, geocode, reverse, marker" collectionFormat(multi)
// @Param limit query int false "Количество записей (максимум 200)" default(50)
// @Success 200 {object} utils.SuccessResponse{data=dto.HistoryListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	var req dto.HistoryListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"query": err.Error(),
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.historyUC.List(c.UserContext(), middleware.GetClientID(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
	})
}
