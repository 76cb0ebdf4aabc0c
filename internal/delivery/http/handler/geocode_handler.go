package handler

import (
	"github.com/geo-gateway/internal/delivery/http/middleware"
	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/pkg/utils"
	"github.com/geo-gateway/internal/pkg/validator"
	"github.com/geo-gateway/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GeocodeHandler - обработчик геокодирования
type GeocodeHandler struct {
	geocodeUC Geocoder
	logger    *zap.Logger
}

// NewGeocodeHandler - создание нового GeocodeHandler
func NewGeocodeHandler(geocodeUC Geocoder, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeUC: geocodeUC,
		logger:    logger,
	}
}

// Geocode godoc
// @Summary Прямое геокодирование
// @Description Находит места по текстовому адресу или названию через Nominatim
// @Tags Geocode
// @Accept json
// @Produce json
// @Param X-Client-ID header string false "Идентификатор клиента для rate limit"
// @Param request body dto.GeocodeRequest true "Текст запроса, лимит (максимум 10) и код страны"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/geocode [post]
func (h *GeocodeHandler) Geocode(c *fiber.Ctx) error {
	var req dto.GeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": "invalid JSON",
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Geocode(c.UserContext(), middleware.GetClientID(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setRateLimitHeaders(c, result.RateLimit)
	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
	})
}

// ReverseGeocode godoc
// @Summary Обратное геокодирование
// @Description Определяет адрес по координатам через Nominatim
// @Tags Geocode
// @Produce json
// @Param X-Client-ID header string false "Идентификатор клиента для rate limit"
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Param zoom query int false "Детализация адреса (0-18)" default(18)
// @Success 200 {object} utils.SuccessResponse{data=domain.LocationResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/reverse-geocode [get]
func (h *GeocodeHandler) ReverseGeocode(c *fiber.Ctx) error {
	req := dto.ReverseGeocodeRequest{Zoom: domain.DefaultZoom}
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"query": err.Error(),
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Reverse(c.UserContext(), middleware.GetClientID(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setRateLimitHeaders(c, result.RateLimit)
	return utils.SendSuccess(c, result.Location, nil)
}
