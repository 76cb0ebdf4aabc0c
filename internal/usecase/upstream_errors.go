package usecase

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/pkg/errors"
)

// translateUpstreamError переводит ошибки провайдеров в ответы API.
// Неизвестные ошибки логируются и скрываются за INTERNAL_SERVER_ERROR.
func translateUpstreamError(logger *zap.Logger, operation string, err error) error {
	var statusErr *domain.UpstreamStatusError

	switch {
	case stderrors.Is(err, domain.ErrUpstreamUnavailable),
		stderrors.Is(err, context.DeadlineExceeded),
		stderrors.Is(err, context.Canceled):
		logger.Warn("Upstream unavailable", zap.String("operation", operation), zap.Error(err))
		return errors.ErrServiceUnavailable

	case stderrors.As(err, &statusErr):
		logger.Warn("Upstream rejected request",
			zap.String("operation", operation),
			zap.String("provider", statusErr.Provider),
			zap.Int("upstream_status", statusErr.StatusCode))
		return errors.ErrExternalAPI.WithDetails(map[string]interface{}{
			"provider":        statusErr.Provider,
			"upstream_status": statusErr.StatusCode,
		})

	case stderrors.Is(err, domain.ErrNotFound):
		return errors.ErrLocationNotFound
	}

	logger.Error("Unexpected upstream failure", zap.String("operation", operation), zap.Error(err))
	return errors.ErrInternalServer
}
