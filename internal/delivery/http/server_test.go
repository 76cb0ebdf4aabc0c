package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "github.com/geo-gateway/docs"
	"github.com/geo-gateway/internal/config"
	"github.com/geo-gateway/internal/delivery/http/handler"
	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/ratelimit"
	"github.com/geo-gateway/internal/usecase"
	"github.com/geo-gateway/internal/usecase/dto"
)

type stubNearby struct {
	clientIDs []string
}

func (s *stubNearby) Search(_ context.Context, clientID string, req dto.NearbyRequest) (*dto.LocationListResponse, error) {
	s.clientIDs = append(s.clientIDs, clientID)
	return &dto.LocationListResponse{
		Results:   []domain.LocationResult{},
		Category:  domain.ResolveAmenity(req.Query),
		RateLimit: &ratelimit.Decision{Allowed: true, Limit: 100, Remaining: 99, ResetAt: time.Now().Add(time.Hour)},
	}, nil
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, string, dto.GeocodeRequest) (*dto.LocationListResponse, error) {
	return &dto.LocationListResponse{Results: []domain.LocationResult{}}, nil
}

func (stubGeocoder) Reverse(context.Context, string, dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error) {
	return &dto.ReverseGeocodeResponse{}, nil
}

type stubHistory struct{}

func (stubHistory) SaveMarker(_ context.Context, _ string, req dto.MarkerRequest) (*dto.MarkerAcceptedResponse, error) {
	return &dto.MarkerAcceptedResponse{ID: req.ID, Status: "accepted"}, nil
}

func (stubHistory) List(context.Context, string, dto.HistoryListRequest) (*dto.HistoryListResponse, error) {
	return &dto.HistoryListResponse{Records: []domain.HistoryRecord{}}, nil
}

type stubStats struct{}

func (stubStats) GetStatistics(context.Context) (*domain.RateLimitStats, error) {
	return &domain.RateLimitStats{Limit: 100, Window: "1h0m0s"}, nil
}

func newTestServer(t *testing.T) (*Server, *stubNearby) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Env:                  "test",
			CORSOrigins:          "*",
			SlowRequestThreshold: time.Second,
		},
	}
	log := zap.NewNop()
	nearby := &stubNearby{}
	system := usecase.NewSystemUseCase(map[string]usecase.HealthChecker{"postgres": nil}, map[string]string{"nasa": ""}, log)

	srv := NewServer(cfg, log, Handlers{
		Nearby:  handler.NewNearbyHandler(nearby, log),
		Geocode: handler.NewGeocodeHandler(stubGeocoder{}, log),
		History: handler.NewHistoryHandler(stubHistory{}, log),
		System:  handler.NewSystemHandler(system, stubStats{}, log),
	})
	return srv, nearby
}

func TestServer_Routes(t *testing.T) {
	srv, nearby := newTestServer(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/nearby",
		strings.NewReader(`{"lat":28.6139,"lon":77.209,"query":"petrol pump"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Client-ID", "device-7")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "99", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"device-7"}, nearby.clientIDs)

	var body struct {
		Data dto.LocationListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fuel", body.Data.Category)

	for _, path := range []string{"/api/v1/health", "/api/v1/categories", "/api/v1/keys", "/api/v1/stats", "/api/v1/history"} {
		resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	req = httptest.NewRequest(fiber.MethodPost, "/api/v1/history/markers",
		strings.NewReader(`{"lat":19.07,"lon":72.87,"name":"Home"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestServer_NotFoundUsesErrorEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/unknown", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body["error"]["code"])
}

func TestServer_SwaggerDoc(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/swagger/doc.json", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/api/v1/nearby")
	assert.Contains(t, string(data), "Geo Gateway API")
}
