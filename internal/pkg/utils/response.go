package utils

import (
	stderrors "errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/geo-gateway/internal/pkg/errors"
)

// Заголовки квоты rate limiter'а
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendError(c *fiber.Ctx, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if appErr.Code == errors.ErrRateLimited.Code {
			if retryAfter, ok := appErr.Details["retry_after"].(int); ok {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			}
			if limit, ok := appErr.Details["limit"].(int); ok {
				c.Set(HeaderRateLimitLimit, strconv.Itoa(limit))
				c.Set(HeaderRateLimitRemaining, "0")
			}
		}
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}
