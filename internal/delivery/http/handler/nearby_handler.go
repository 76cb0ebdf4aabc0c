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

// NearbyHandler - обработчик поиска POI рядом с пользователем
type NearbyHandler struct {
	nearbyUC NearbySearcher
	logger   *zap.Logger
}

// NewNearbyHandler - создание нового NearbyHandler
func NewNearbyHandler(nearbyUC NearbySearcher, logger *zap.Logger) *NearbyHandler {
	return &NearbyHandler{
		nearbyUC: nearbyUC,
		logger:   logger,
	}
}

// Search godoc
// @Summary Поиск мест рядом
// @Description Ищет объекты OSM с тегом amenity в радиусе от точки. Разговорные названия ("petrol pump", "temple") приводятся к тегам OSM. Результаты отсортированы по расстоянию.
// @Tags Nearby
// @Accept json
// @Produce json
// @Param X-Client-ID header string false "Идентификатор клиента для rate limit"
// @Param request body dto.NearbyRequest true "Точка, категория, радиус (км, максимум 50) и лимит (максимум 50)"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/nearby [post]
func (h *NearbyHandler) Search(c *fiber.Ctx) error {
	var req dto.NearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": "invalid JSON",
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.nearbyUC.Search(c.UserContext(), middleware.GetClientID(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setRateLimitHeaders(c, result.RateLimit)
	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
		Limit: req.Limit,
	})
}
