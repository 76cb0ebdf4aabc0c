package repository

import (
	"context"

	"github.com/geo-gateway/internal/domain"
)

// POIProvider - внешний источник POI (Overpass API)
type POIProvider interface {
	// FetchNearby выполняет пространственный запрос; битые элементы отбрасываются провайдером
	FetchNearby(ctx context.Context, query domain.SpatialQuery) ([]domain.RawElement, error)
}

// Geocoder - внешний геокодер (Nominatim)
type Geocoder interface {
	// Search выполняет прямое геокодирование
	Search(ctx context.Context, query domain.GeocodeQuery) ([]domain.RawElement, error)

	// Reverse выполняет обратное геокодирование; domain.ErrNotFound если адреса нет
	Reverse(ctx context.Context, query domain.ReverseQuery) (*domain.RawElement, error)
}

// RateLimitStatsStore - хранилище счётчиков rate limiter'а
type RateLimitStatsStore interface {
	Record(ctx context.Context, event domain.RateLimitEvent) error
	Totals(ctx context.Context) (allowed, denied int64, err error)
}
