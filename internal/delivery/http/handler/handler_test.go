package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-gateway/internal/delivery/http/handler"
	"github.com/geo-gateway/internal/delivery/http/middleware"
	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/pkg/errors"
	"github.com/geo-gateway/internal/ratelimit"
	"github.com/geo-gateway/internal/usecase"
	"github.com/geo-gateway/internal/usecase/dto"
)

type MockNearbySearcher struct {
	mock.Mock
}

func (m *MockNearbySearcher) Search(ctx context.Context, clientID string, req dto.NearbyRequest) (*dto.LocationListResponse, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationListResponse), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, clientID string, req dto.GeocodeRequest) (*dto.LocationListResponse, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationListResponse), args.Error(1)
}

func (m *MockGeocoder) Reverse(ctx context.Context, clientID string, req dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReverseGeocodeResponse), args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) SaveMarker(ctx context.Context, clientID string, req dto.MarkerRequest) (*dto.MarkerAcceptedResponse, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MarkerAcceptedResponse), args.Error(1)
}

func (m *MockHistoryService) List(ctx context.Context, clientID string, req dto.HistoryListRequest) (*dto.HistoryListResponse, error) {
	args := m.Called(ctx, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HistoryListResponse), args.Error(1)
}

type MockSystemService struct {
	mock.Mock
}

func (m *MockSystemService) Health(ctx context.Context) *dto.HealthResponse {
	return m.Called(ctx).Get(0).(*dto.HealthResponse)
}

func (m *MockSystemService) Categories() *dto.CategoriesResponse {
	return m.Called().Get(0).(*dto.CategoriesResponse)
}

func (m *MockSystemService) APIKeys() *dto.APIKeysResponse {
	return m.Called().Get(0).(*dto.APIKeysResponse)
}

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) GetStatistics(ctx context.Context) (*domain.RateLimitStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitStats), args.Error(1)
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.ClientID(false))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(data)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded), string(data))
	}
	return resp, decoded
}

func errorCode(body map[string]interface{}) string {
	errBody, _ := body["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}

func ptr(v float64) *float64 { return &v }

func TestNearbyHandler_Search(t *testing.T) {
	uc := new(MockNearbySearcher)
	app := newApp()
	app.Post("/nearby", handler.NewNearbyHandler(uc, zap.NewNop()).Search)

	resetAt := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)
	distance := 0.42
	uc.On("Search", mock.Anything, "device-1", dto.NearbyRequest{
		Lat: ptr(28.6139), Lon: ptr(77.209), Query: "atm", RadiusKm: 2, Limit: 5,
	}).Return(&dto.LocationListResponse{
		Results:   []domain.LocationResult{{ID: "1", Name: "SBI ATM", Category: "atm", Lat: 28.61, Lon: 77.21, DistanceKm: &distance}},
		Total:     1,
		Category:  "atm",
		RateLimit: &ratelimit.Decision{Allowed: true, Limit: 100, Remaining: 99, ResetAt: resetAt},
	}, nil).Once()

	resp, body := doJSON(t, app, http.MethodPost, "/nearby",
		map[string]interface{}{"lat": 28.6139, "lon": 77.209, "query": "atm", "radius_km": 2, "limit": 5},
		map[string]string{middleware.HeaderClientID: "device-1"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "99", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1767272400", resp.Header.Get("X-RateLimit-Reset"))

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, "atm", data["category"])
	assert.NotContains(t, data, "RateLimit")
	results := data["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, 0.42, results[0].(map[string]interface{})["distance_km"])
	uc.AssertExpectations(t)
}

func TestNearbyHandler_Validation(t *testing.T) {
	uc := new(MockNearbySearcher)
	app := newApp()
	app.Post("/nearby", handler.NewNearbyHandler(uc, zap.NewNop()).Search)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "invalid JSON", body: "{lat:"},
		{name: "missing lat", body: map[string]interface{}{"lon": 77.2, "query": "atm"}},
		{name: "lat out of range", body: map[string]interface{}{"lat": 91, "lon": 77.2, "query": "atm"}},
		{name: "empty query", body: map[string]interface{}{"lat": 28.6, "lon": 77.2, "query": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodPost, "/nearby", tt.body, nil)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_REQUEST", errorCode(body))
		})
	}
	uc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestNearbyHandler_RateLimited(t *testing.T) {
	uc := new(MockNearbySearcher)
	app := newApp()
	app.Post("/nearby", handler.NewNearbyHandler(uc, zap.NewNop()).Search)

	uc.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.ErrRateLimited.WithDetails(map[string]interface{}{
			"limit":       100,
			"retry_after": 1800,
		})).Once()

	resp, body := doJSON(t, app, http.MethodPost, "/nearby",
		map[string]interface{}{"lat": 28.6, "lon": 77.2, "query": "atm"}, nil)

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errorCode(body))
	assert.Equal(t, "1800", resp.Header.Get("Retry-After"))
	assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestNearbyHandler_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "unavailable", err: errors.ErrServiceUnavailable, status: fiber.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE"},
		{name: "bad gateway", err: errors.ErrExternalAPI, status: fiber.StatusBadGateway, code: "EXTERNAL_API_ERROR"},
		{name: "unknown", err: assert.AnError, status: fiber.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockNearbySearcher)
			app := newApp()
			app.Post("/nearby", handler.NewNearbyHandler(uc, zap.NewNop()).Search)
			uc.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			resp, body := doJSON(t, app, http.MethodPost, "/nearby",
				map[string]interface{}{"lat": 28.6, "lon": 77.2, "query": "atm"}, nil)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestGeocodeHandler_Geocode(t *testing.T) {
	uc := new(MockGeocoder)
	app := newApp()
	app.Post("/geocode", handler.NewGeocodeHandler(uc, zap.NewNop()).Geocode)

	uc.On("Geocode", mock.Anything, mock.Anything, dto.GeocodeRequest{Query: "India Gate", Limit: 3, Country: "in"}).
		Return(&dto.LocationListResponse{
			Results: []domain.LocationResult{{ID: "42", Name: "India Gate", Category: "tourism", Lat: 28.6129, Lon: 77.2295}},
			Total:   1,
		}, nil).Once()

	resp, body := doJSON(t, app, http.MethodPost, "/geocode",
		map[string]interface{}{"query": "India Gate", "limit": 3, "country": "in"}, nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))

	resp, body = doJSON(t, app, http.MethodPost, "/geocode",
		map[string]interface{}{"query": "x"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(body))

	uc.AssertExpectations(t)
}

func TestGeocodeHandler_ReverseGeocode(t *testing.T) {
	uc := new(MockGeocoder)
	app := newApp()
	app.Get("/reverse-geocode", handler.NewGeocodeHandler(uc, zap.NewNop()).ReverseGeocode)

	uc.On("Reverse", mock.Anything, mock.Anything, dto.ReverseGeocodeRequest{Lat: ptr(28.6129), Lon: ptr(77.2295), Zoom: 18}).
		Return(&dto.ReverseGeocodeResponse{
			Location:  domain.LocationResult{ID: "7", Name: "Rajpath", Category: "highway", Lat: 28.6129, Lon: 77.2295},
			RateLimit: &ratelimit.Decision{Allowed: true, Limit: 100, Remaining: 10, ResetAt: time.Unix(1700000000, 0)},
		}, nil).Once()

	resp, body := doJSON(t, app, http.MethodGet, "/reverse-geocode?lat=28.6129&lon=77.2295", nil, nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Remaining"))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Rajpath", data["name"])
	uc.AssertExpectations(t)
}

func TestGeocodeHandler_ReverseGeocodeErrors(t *testing.T) {
	uc := new(MockGeocoder)
	app := newApp()
	app.Get("/reverse-geocode", handler.NewGeocodeHandler(uc, zap.NewNop()).ReverseGeocode)

	resp, body := doJSON(t, app, http.MethodGet, "/reverse-geocode?lon=77.2", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(body))

	resp, body = doJSON(t, app, http.MethodGet, "/reverse-geocode?lat=abc&lon=77.2", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_COORDINATES", errorCode(body))

	uc.On("Reverse", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.ErrLocationNotFound).Once()
	resp, body = doJSON(t, app, http.MethodGet, "/reverse-geocode?lat=0&lon=-160", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "LOCATION_NOT_FOUND", errorCode(body))
}

func TestHistoryHandler_SaveMarker(t *testing.T) {
	uc := new(MockHistoryService)
	app := newApp()
	app.Post("/history/markers", handler.NewHistoryHandler(uc, zap.NewNop()).SaveMarker)

	id := "3f1c2b8e-9a4d-4c56-8e1f-2a3b4c5d6e7f"
	uc.On("SaveMarker", mock.Anything, "device-9", dto.MarkerRequest{ID: id, Lat: ptr(19.07), Lon: ptr(72.87), Name: "Home"}).
		Return(&dto.MarkerAcceptedResponse{ID: id, Status: "accepted"}, nil).Once()

	resp, body := doJSON(t, app, http.MethodPost, "/history/markers",
		map[string]interface{}{"id": id, "lat": 19.07, "lon": 72.87, "name": "Home"},
		map[string]string{middleware.HeaderClientID: "device-9"})

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "accepted", data["status"])

	resp, body = doJSON(t, app, http.MethodPost, "/history/markers",
		map[string]interface{}{"id": "not-a-uuid", "lat": 19.07, "lon": 72.87}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(body))

	uc.AssertExpectations(t)
}

func TestHistoryHandler_List(t *testing.T) {
	uc := new(MockHistoryService)
	app := newApp()
	app.Get("/history", handler.NewHistoryHandler(uc, zap.NewNop()).List)

	uc.On("List", mock.Anything, "device-2", dto.HistoryListRequest{Kinds: []string{"nearby", "marker"}, Limit: 10}).
		Return(&dto.HistoryListResponse{Records: []domain.HistoryRecord{}, Total: 0}, nil).Once()

	resp, body := doJSON(t, app, http.MethodGet, "/history?kind=nearby&kind=marker&limit=10", nil,
		map[string]string{middleware.HeaderClientID: "device-2"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "data")

	resp, body = doJSON(t, app, http.MethodGet, "/history?kind=weather", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", errorCode(body))

	uc.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.ErrHistoryUnavailable).Once()
	resp, body = doJSON(t, app, http.MethodGet, "/history", nil, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "HISTORY_UNAVAILABLE", errorCode(body))
}

func TestSystemHandler(t *testing.T) {
	system := new(MockSystemService)
	stats := new(MockStatsProvider)
	h := handler.NewSystemHandler(system, stats, zap.NewNop())

	app := newApp()
	app.Get("/health", h.Health)
	app.Get("/categories", h.Categories)
	app.Get("/keys", h.APIKeys)
	app.Get("/stats", h.GetStatistics)

	t.Run("healthy", func(t *testing.T) {
		system.On("Health", mock.Anything).Return(&dto.HealthResponse{
			Status:   usecase.StatusHealthy,
			Services: map[string]string{"redis": usecase.ServiceConnected, "postgres": usecase.ServiceNotConfigured},
		}).Once()

		resp, body := doJSON(t, app, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		system.On("Health", mock.Anything).Return(&dto.HealthResponse{
			Status:   usecase.StatusUnhealthy,
			Services: map[string]string{"redis": usecase.ServiceDisconnected},
		}).Once()

		resp, body := doJSON(t, app, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "unhealthy", body["status"])
	})

	t.Run("categories", func(t *testing.T) {
		system.On("Categories").Return(&dto.CategoriesResponse{Categories: []string{"atm", "fuel"}, Total: 2}).Once()

		resp, body := doJSON(t, app, http.MethodGet, "/categories", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(2), body["meta"].(map[string]interface{})["total"])
	})

	t.Run("keys", func(t *testing.T) {
		masked := "DEMO********4567"
		system.On("APIKeys").Return(&dto.APIKeysResponse{Keys: map[string]*string{"nasa": &masked, "bhuvan": nil}}).Once()

		resp, body := doJSON(t, app, http.MethodGet, "/keys", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		keys := body["data"].(map[string]interface{})["keys"].(map[string]interface{})
		assert.Equal(t, masked, keys["nasa"])
		assert.Nil(t, keys["bhuvan"])
		assert.Contains(t, keys, "bhuvan")
	})

	t.Run("stats", func(t *testing.T) {
		stats.On("GetStatistics", mock.Anything).Return(&domain.RateLimitStats{Allowed: 5, Denied: 1, Limit: 100, Window: "1h0m0s"}, nil).Once()

		resp, body := doJSON(t, app, http.MethodGet, "/stats", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, float64(5), data["allowed"])
		assert.Equal(t, float64(1), data["denied"])
	})
}
