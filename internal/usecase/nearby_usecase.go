package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/usecase/dto"
)

// NearbyUseCase - поиск POI рядом с точкой через Overpass
type NearbyUseCase struct {
	gate       *RateGate
	provider   repository.POIProvider
	normalizer *Normalizer
	history    *HistoryRecorder
	logger     *zap.Logger
}

// NewNearbyUseCase - создание нового NearbyUseCase
func NewNearbyUseCase(
	gate *RateGate,
	provider repository.POIProvider,
	normalizer *Normalizer,
	history *HistoryRecorder,
	logger *zap.Logger,
) *NearbyUseCase {
	return &NearbyUseCase{
		gate:       gate,
		provider:   provider,
		normalizer: normalizer,
		history:    history,
		logger:     logger,
	}
}

// Search выполняет весь конвейер: квота, нормализация запроса, Overpass,
// разбор элементов, ранжирование. История пишется в фоне после успеха.
func (uc *NearbyUseCase) Search(ctx context.Context, clientID string, req dto.NearbyRequest) (*dto.LocationListResponse, error) {
	decision, err := uc.gate.Check(ctx, clientID, OpNearby)
	if err != nil {
		return nil, err
	}

	if req.Lat == nil || req.Lon == nil {
		return nil, errors.ErrInvalidCoordinates
	}
	origin := domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
	if !origin.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	query := domain.SearchQuery{
		Origin:   origin,
		Text:     req.Query,
		RadiusKm: req.RadiusKm,
		Limit:    req.Limit,
	}.Clamp()

	tag := domain.ResolveAmenity(query.Text)
	if tag == "" {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"query": "required"})
	}

	spatial := domain.NewSpatialQuery(query.Origin, tag, query.RadiusKm, query.Limit)

	raws, err := uc.provider.FetchNearby(ctx, spatial)
	if err != nil {
		return nil, translateUpstreamError(uc.logger, OpNearby, err)
	}

	normalized := uc.normalizer.NormalizeBatch(raws, &query.Origin, tag)
	inside := withinRadius(normalized, query.RadiusKm)
	if dropped := len(normalized) - len(inside); dropped > 0 {
		uc.logger.Debug("Dropped results outside search radius",
			zap.Int("dropped", dropped),
			zap.Float64("radius_km", query.RadiusKm))
	}
	results := Rank(inside, query.Limit)

	uc.logger.Debug("Nearby search completed",
		zap.String("client_id", clientID),
		zap.String("tag", tag),
		zap.Int("raw", len(raws)),
		zap.Int("results", len(results)))

	uc.recordHistory(clientID, query, tag, len(results))

	return &dto.LocationListResponse{
		Results:   results,
		Total:     len(results),
		Category:  tag,
		RateLimit: decision,
	}, nil
}

// radiusTolerance покрывает округление distance_km до сотых
const radiusTolerance = 0.005

// withinRadius отбрасывает результаты дальше radiusKm. around в Overpass
// пропускает way/relation, задевающие круг, а out center отдаёт их центр,
// который может лежать за пределами радиуса.
func withinRadius(results []domain.LocationResult, radiusKm float64) []domain.LocationResult {
	kept := make([]domain.LocationResult, 0, len(results))
	for _, r := range results {
		if r.DistanceKm != nil && *r.DistanceKm > radiusKm+radiusTolerance {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (uc *NearbyUseCase) recordHistory(clientID string, query domain.SearchQuery, tag string, count int) {
	if !uc.history.Enabled() {
		return
	}

	origin := query.Origin
	record := domain.NewHistoryRecord(clientID, domain.HistoryKindNearby, strings.TrimSpace(query.Text), count, &origin)
	record.Payload, _ = json.Marshal(map[string]interface{}{
		"tag":       tag,
		"radius_km": query.RadiusKm,
		"limit":     query.Limit,
		"lat":       origin.Lat,
		"lon":       origin.Lon,
	})
	uc.history.Record(record)
}
