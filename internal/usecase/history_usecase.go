package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/usecase/dto"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryUseCase - маркеры и выборка истории для офлайн-синхронизации
type HistoryUseCase struct {
	gate     *RateGate
	recorder *HistoryRecorder
	repo     repository.HistoryRepository
	logger   *zap.Logger
}

// NewHistoryUseCase - создание нового HistoryUseCase; repo равен nil, если Postgres отключён
func NewHistoryUseCase(
	gate *RateGate,
	recorder *HistoryRecorder,
	repo repository.HistoryRepository,
	logger *zap.Logger,
) *HistoryUseCase {
	return &HistoryUseCase{
		gate:     gate,
		recorder: recorder,
		repo:     repo,
		logger:   logger,
	}
}

// SaveMarker принимает маркер к фоновой записи
func (uc *HistoryUseCase) SaveMarker(ctx context.Context, clientID string, req dto.MarkerRequest) (*dto.MarkerAcceptedResponse, error) {
	// выключенная история не расходует квоту клиента
	if !uc.recorder.Enabled() {
		return nil, errors.ErrHistoryUnavailable
	}
	if _, err := uc.gate.Check(ctx, clientID, OpMarker); err != nil {
		return nil, err
	}
	if req.Lat == nil || req.Lon == nil {
		return nil, errors.ErrInvalidCoordinates
	}

	point := domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
	if !point.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	record := domain.NewHistoryRecord(clientID, domain.HistoryKindMarker, strings.TrimSpace(req.Name), 0, &point)
	if id, err := uuid.Parse(req.ID); err == nil {
		record.ID = id
	}

	payload, err := json.Marshal(map[string]interface{}{
		"name":     req.Name,
		"category": req.Category,
		"note":     req.Note,
		"lat":      point.Lat,
		"lon":      point.Lon,
	})
	if err != nil {
		uc.logger.Error("Failed to marshal marker payload", zap.Error(err))
		return nil, errors.ErrInternalServer
	}
	record.Payload = payload

	uc.recorder.Record(record)

	return &dto.MarkerAcceptedResponse{
		ID:     record.ID.String(),
		Status: "accepted",
	}, nil
}

// List возвращает последние записи клиента
func (uc *HistoryUseCase) List(ctx context.Context, clientID string, req dto.HistoryListRequest) (*dto.HistoryListResponse, error) {
	if uc.repo == nil {
		return nil, errors.ErrHistoryUnavailable
	}
	if _, err := uc.gate.Check(ctx, clientID, OpHistory); err != nil {
		return nil, err
	}

	kinds := make([]domain.HistoryKind, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kinds = append(kinds, domain.HistoryKind(strings.ToLower(k)))
	}
	limit := domain.ClampLimit(req.Limit, defaultHistoryLimit, maxHistoryLimit)

	records, err := uc.repo.ListByClient(ctx, clientID, kinds, limit)
	if err != nil {
		uc.logger.Error("Failed to list history",
			zap.String("client_id", clientID),
			zap.Error(err))
		return nil, errors.ErrInternalServer
	}

	return &dto.HistoryListResponse{
		Records: records,
		Total:   len(records),
	}, nil
}
