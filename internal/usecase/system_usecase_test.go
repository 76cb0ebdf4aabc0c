package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/ratelimit"
	"github.com/geo-gateway/internal/usecase"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Health(ctx context.Context) error { return f(ctx) }

func TestSystemUseCase_Health(t *testing.T) {
	ok := checkerFunc(func(context.Context) error { return nil })
	down := checkerFunc(func(context.Context) error { return fmt.Errorf("connection refused") })

	t.Run("healthy", func(t *testing.T) {
		uc := usecase.NewSystemUseCase(map[string]usecase.HealthChecker{"redis": ok, "database": nil}, nil, zap.NewNop())

		resp := uc.Health(context.Background())
		assert.Equal(t, usecase.StatusHealthy, resp.Status)
		assert.Equal(t, map[string]string{"redis": "connected", "database": "not configured"}, resp.Services)
	})

	t.Run("unhealthy", func(t *testing.T) {
		uc := usecase.NewSystemUseCase(map[string]usecase.HealthChecker{"redis": ok, "database": down}, nil, zap.NewNop())

		resp := uc.Health(context.Background())
		assert.Equal(t, usecase.StatusUnhealthy, resp.Status)
		assert.Equal(t, "disconnected", resp.Services["database"])
	})
}

func TestSystemUseCase_APIKeys(t *testing.T) {
	uc := usecase.NewSystemUseCase(nil, map[string]string{
		"openweathermap": "abcd1234efgh5678",
		"nasa":           "short",
		"bhuvan":         "",
	}, zap.NewNop())

	keys := uc.APIKeys().Keys
	require.NotNil(t, keys["openweathermap"])
	assert.Equal(t, "abcd********5678", *keys["openweathermap"])
	assert.Equal(t, "****", *keys["nasa"])
	assert.Nil(t, keys["bhuvan"])
}

func TestSystemUseCase_Categories(t *testing.T) {
	resp := usecase.NewSystemUseCase(nil, nil, zap.NewNop()).Categories()
	assert.Equal(t, domain.Categories(), resp.Categories)
	assert.Contains(t, resp.Categories, "fuel")
	assert.Equal(t, len(resp.Categories), resp.Total)
}

func TestStatsUseCase_GetStatistics(t *testing.T) {
	limiter := ratelimit.NewFixedWindowLimiter(100, time.Hour)
	store := ratelimit.NewMemoryStatsStore()
	gate := usecase.NewRateGate(limiter, store, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, _ = gate.Check(context.Background(), "a", usecase.OpNearby)
	}
	_, _ = gate.Check(context.Background(), "b", usecase.OpGeocode)

	stats, err := usecase.NewStatsUseCase(limiter, store, zap.NewNop()).GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Allowed)
	assert.Zero(t, stats.Denied)
	assert.Equal(t, 100, stats.Limit)
	assert.Equal(t, "1h0m0s", stats.Window)
	assert.Equal(t, 2, stats.Clients)
}
