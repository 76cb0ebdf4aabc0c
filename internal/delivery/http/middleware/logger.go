package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Logger - логирование запросов; запросы дольше slowThreshold логируются как warn
func Logger(logger *zap.Logger, slowThreshold time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			// ErrorHandler выставит статус до записи в лог
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", elapsed),
			zap.String("client_id", GetClientID(c)),
		}

		switch {
		case slowThreshold > 0 && elapsed > slowThreshold:
			logger.Warn("Slow request", fields...)
		case c.Response().StatusCode() >= fiber.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		default:
			logger.Info("Request", fields...)
		}

		return nil
	}
}
