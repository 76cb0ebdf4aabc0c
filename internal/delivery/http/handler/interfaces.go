package handler

import (
	"context"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/usecase/dto"
)

// NearbySearcher - поиск POI рядом с точкой
type NearbySearcher interface {
	Search(ctx context.Context, clientID string, req dto.NearbyRequest) (*dto.LocationListResponse, error)
}

// Geocoder - прямое и обратное геокодирование
type Geocoder interface {
	Geocode(ctx context.Context, clientID string, req dto.GeocodeRequest) (*dto.LocationListResponse, error)
	Reverse(ctx context.Context, clientID string, req dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error)
}

// HistoryService - маркеры и история клиента
type HistoryService interface {
	SaveMarker(ctx context.Context, clientID string, req dto.MarkerRequest) (*dto.MarkerAcceptedResponse, error)
	List(ctx context.Context, clientID string, req dto.HistoryListRequest) (*dto.HistoryListResponse, error)
}

// SystemService - служебные эндпоинты
type SystemService interface {
	Health(ctx context.Context) *dto.HealthResponse
	Categories() *dto.CategoriesResponse
	APIKeys() *dto.APIKeysResponse
}

// StatsProvider - статистика rate limiter'а
type StatsProvider interface {
	GetStatistics(ctx context.Context) (*domain.RateLimitStats, error)
}
