package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/usecase"
	"github.com/geo-gateway/internal/usecase/dto"
)

func indiaGate() domain.RawElement {
	return domain.RawElement{
		Kind:        domain.GeometryPoint,
		Type:        "memorial",
		ID:          "1001",
		Coordinate:  &domain.GeoPoint{Lat: 28.6129, Lon: 77.2295},
		DisplayName: "India Gate, Rajpath, New Delhi",
		Category:    "historic",
		Tags:        map[string]string{"name": "India Gate", "addr:city": "New Delhi"},
	}
}

func TestGeocodeUseCase_Geocode(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	key := "geocode:search:in:5:india gate"

	t.Run("cache miss queries geocoder and caches", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		cache := &MockCacheRepository{}
		sink := &recordingSink{}
		recorder := usecase.NewHistoryRecorder(sink, time.Second, logger)

		cache.On("Get", mock.Anything, key).Return(nil, nil)
		cache.On("Set", mock.Anything, key, mock.Anything, time.Hour).Return(nil)
		geocoder.On("Search", mock.Anything, domain.GeocodeQuery{Text: "India Gate", Limit: 5, Country: "in"}).
			Return([]domain.RawElement{indiaGate()}, nil)

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, cache, usecase.NewNormalizer(logger), recorder, logger, time.Hour)

		resp, err := uc.Geocode(ctx, "client-1", dto.GeocodeRequest{Query: " India Gate ", Country: "IN"})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "India Gate", resp.Results[0].Name)
		assert.Equal(t, "historic", resp.Results[0].Category)
		assert.Nil(t, resp.Results[0].DistanceKm)
		assert.Equal(t, map[string]string{"city": "New Delhi"}, resp.Results[0].Address)

		geocoder.AssertExpectations(t)
		cache.AssertExpectations(t)

		require.NoError(t, recorder.Close(ctx))
		records := sink.Records()
		require.Len(t, records, 1)
		assert.Equal(t, domain.HistoryKindGeocode, records[0].Kind)
		assert.Equal(t, "India Gate", records[0].Query)
		assert.Nil(t, records[0].Origin)
	})

	t.Run("cache hit skips geocoder", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		cache := &MockCacheRepository{}

		cached, _ := json.Marshal([]domain.LocationResult{{ID: "1001", Name: "India Gate", Lat: 28.6129, Lon: 77.2295}})
		cache.On("Get", mock.Anything, key).Return(cached, nil)

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, cache, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		resp, err := uc.Geocode(ctx, "client-1", dto.GeocodeRequest{Query: "India Gate", Country: "in"})
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "1001", resp.Results[0].ID)
		geocoder.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("cache errors are ignored", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		cache := &MockCacheRepository{}

		cache.On("Get", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection reset"))
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("connection reset"))
		geocoder.On("Search", mock.Anything, mock.Anything).Return([]domain.RawElement{indiaGate()}, nil)

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, cache, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		resp, err := uc.Geocode(ctx, "client-1", dto.GeocodeRequest{Query: "India Gate", Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("works without cache", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		geocoder.On("Search", mock.Anything, domain.GeocodeQuery{Text: "Lotus Temple", Limit: 10}).
			Return([]domain.RawElement{}, nil)

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, nil, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		resp, err := uc.Geocode(ctx, "c", dto.GeocodeRequest{Query: "Lotus Temple", Limit: 25})
		require.NoError(t, err)
		assert.Zero(t, resp.Total)
		geocoder.AssertExpectations(t)
	})

	t.Run("upstream failure", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		geocoder.On("Search", mock.Anything, mock.Anything).Return(nil, &domain.UpstreamStatusError{Provider: "nominatim", StatusCode: 403})

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, nil, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		_, err := uc.Geocode(ctx, "c", dto.GeocodeRequest{Query: "Lotus Temple"})
		assert.ErrorIs(t, err, errors.ErrExternalAPI)
	})

	t.Run("rate limited", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		geocoder.On("Search", mock.Anything, mock.Anything).Return([]domain.RawElement{}, nil)

		uc := usecase.NewGeocodeUseCase(newGate(1), geocoder, nil, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		_, err := uc.Geocode(ctx, "c", dto.GeocodeRequest{Query: "Qutub Minar"})
		require.NoError(t, err)
		_, err = uc.Geocode(ctx, "c", dto.GeocodeRequest{Query: "Qutub Minar"})
		assert.ErrorIs(t, err, errors.ErrRateLimited)
		geocoder.AssertNumberOfCalls(t, "Search", 1)
	})
}

func TestGeocodeUseCase_Reverse(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("found and cached", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		cache := &MockCacheRepository{}
		key := "geocode:reverse:28.61290:77.22950:18"

		el := indiaGate()
		cache.On("Get", mock.Anything, key).Return(nil, nil)
		cache.On("Set", mock.Anything, key, mock.Anything, time.Hour).Return(nil)
		geocoder.On("Reverse", mock.Anything, domain.ReverseQuery{Point: domain.GeoPoint{Lat: 28.6129, Lon: 77.2295}, Zoom: 18}).
			Return(&el, nil)

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, cache, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		resp, err := uc.Reverse(ctx, "c", dto.ReverseGeocodeRequest{Lat: ptrFloat64(28.6129), Lon: ptrFloat64(77.2295), Zoom: 18})
		require.NoError(t, err)
		assert.Equal(t, "India Gate", resp.Location.Name)
		assert.Equal(t, 9, resp.RateLimit.Remaining)
		cache.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		geocoder.On("Reverse", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: Unable to geocode", domain.ErrNotFound))

		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, nil, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		_, err := uc.Reverse(ctx, "c", dto.ReverseGeocodeRequest{Lat: ptrFloat64(0), Lon: ptrFloat64(-160)})
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "LOCATION_NOT_FOUND", appErr.Code)
		assert.Equal(t, 404, appErr.StatusCode)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		geocoder := &MockGeocoder{}
		uc := usecase.NewGeocodeUseCase(newGate(10), geocoder, nil, usecase.NewNormalizer(logger), nil, logger, time.Hour)

		_, err := uc.Reverse(ctx, "c", dto.ReverseGeocodeRequest{Lat: ptrFloat64(95), Lon: ptrFloat64(0)})
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
		geocoder.AssertNotCalled(t, "Reverse", mock.Anything, mock.Anything)
	})
}
