package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/usecase/dto"
)

// GeocodeUseCase - прямое и обратное геокодирование через Nominatim с кешем в Redis
type GeocodeUseCase struct {
	gate       *RateGate
	geocoder   repository.Geocoder
	cacheRepo  repository.CacheRepository
	normalizer *Normalizer
	history    *HistoryRecorder
	logger     *zap.Logger
	cacheTTL   time.Duration

	group singleflight.Group
}

// NewGeocodeUseCase - создание нового GeocodeUseCase; cacheRepo может быть nil
func NewGeocodeUseCase(
	gate *RateGate,
	geocoder repository.Geocoder,
	cacheRepo repository.CacheRepository,
	normalizer *Normalizer,
	history *HistoryRecorder,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *GeocodeUseCase {
	return &GeocodeUseCase{
		gate:       gate,
		geocoder:   geocoder,
		cacheRepo:  cacheRepo,
		normalizer: normalizer,
		history:    history,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Geocode - поиск мест по тексту
func (uc *GeocodeUseCase) Geocode(ctx context.Context, clientID string, req dto.GeocodeRequest) (*dto.LocationListResponse, error) {
	decision, err := uc.gate.Check(ctx, clientID, OpGeocode)
	if err != nil {
		return nil, err
	}

	query := domain.GeocodeQuery{
		Text:    strings.TrimSpace(req.Query),
		Limit:   domain.ClampLimit(req.Limit, domain.DefaultGeocodeLimit, domain.MaxGeocodeLimit),
		Country: strings.ToLower(strings.TrimSpace(req.Country)),
	}
	if query.Text == "" {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"query": "required"})
	}

	key := fmt.Sprintf("geocode:search:%s:%d:%s", query.Country, query.Limit, strings.ToLower(query.Text))

	var results []domain.LocationResult
	if !uc.fromCache(ctx, key, &results) {
		v, err, shared := uc.group.Do(key, func() (interface{}, error) {
			raws, err := uc.geocoder.Search(context.WithoutCancel(ctx), query)
			if err != nil {
				return nil, err
			}
			found := uc.normalizer.NormalizeBatch(raws, nil, "")
			uc.toCache(ctx, key, found)
			return found, nil
		})
		if err != nil {
			return nil, translateUpstreamError(uc.logger, OpGeocode, err)
		}
		if shared {
			uc.logger.Debug("Geocode result shared between callers", zap.String("key", key))
		}
		results = v.([]domain.LocationResult)
	}

	if len(results) > query.Limit {
		results = results[:query.Limit]
	}

	record := domain.NewHistoryRecord(clientID, domain.HistoryKindGeocode, query.Text, len(results), nil)
	record.Payload, _ = json.Marshal(query)
	uc.history.Record(record)

	return &dto.LocationListResponse{
		Results:   results,
		Total:     len(results),
		RateLimit: decision,
	}, nil
}

// Reverse - адрес по координатам
func (uc *GeocodeUseCase) Reverse(ctx context.Context, clientID string, req dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error) {
	decision, err := uc.gate.Check(ctx, clientID, OpReverse)
	if err != nil {
		return nil, err
	}

	if req.Lat == nil || req.Lon == nil {
		return nil, errors.ErrInvalidCoordinates
	}
	query := domain.ReverseQuery{
		Point: domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon},
		Zoom:  domain.ClampZoom(req.Zoom),
	}
	if !query.Point.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	key := fmt.Sprintf("geocode:reverse:%.5f:%.5f:%d", query.Point.Lat, query.Point.Lon, query.Zoom)

	var location domain.LocationResult
	if !uc.fromCache(ctx, key, &location) {
		v, err, _ := uc.group.Do(key, func() (interface{}, error) {
			raw, err := uc.geocoder.Reverse(context.WithoutCancel(ctx), query)
			if err != nil {
				return nil, err
			}
			result, ok := uc.normalizer.Normalize(*raw, nil, "")
			if !ok {
				return nil, &domain.UpstreamStatusError{Provider: "nominatim", StatusCode: 200, Body: "place without valid coordinates"}
			}
			uc.toCache(ctx, key, result)
			return result, nil
		})
		if err != nil {
			return nil, translateUpstreamError(uc.logger, OpReverse, err)
		}
		location = v.(domain.LocationResult)
	}

	point := query.Point
	record := domain.NewHistoryRecord(clientID, domain.HistoryKindReverse, location.Name, 1, &point)
	record.Payload, _ = json.Marshal(query)
	uc.history.Record(record)

	return &dto.ReverseGeocodeResponse{
		Location:  location,
		RateLimit: decision,
	}, nil
}

// fromCache возвращает true, если значение найдено и разобрано.
// Ошибки кеша не прерывают запрос.
func (uc *GeocodeUseCase) fromCache(ctx context.Context, key string, dst interface{}) bool {
	if uc.cacheRepo == nil {
		return false
	}

	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to read geocode cache", zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		uc.logger.Warn("Corrupted geocode cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (uc *GeocodeUseCase) toCache(ctx context.Context, key string, value interface{}) {
	if uc.cacheRepo == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		uc.logger.Warn("Failed to marshal geocode cache entry", zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(context.WithoutCancel(ctx), key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to write geocode cache", zap.String("key", key), zap.Error(err))
	}
}
