package dto

import (
	"time"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/ratelimit"
)

// LocationListResponse - результаты поиска или геокодирования
type LocationListResponse struct {
	Results  []domain.LocationResult `json:"results"`
	Total    int                     `json:"total"`
	Category string                  `json:"category,omitempty"`

	RateLimit *ratelimit.Decision `json:"-"`
}

// ReverseGeocodeResponse - единственный результат обратного геокодирования
type ReverseGeocodeResponse struct {
	Location domain.LocationResult `json:"location"`

	RateLimit *ratelimit.Decision `json:"-"`
}

// MarkerAcceptedResponse - маркер принят к записи
type MarkerAcceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HistoryListResponse - история клиента, новые записи первыми
type HistoryListResponse struct {
	Records []domain.HistoryRecord `json:"records"`
	Total   int                    `json:"total"`
}

// CategoriesResponse - словарь тегов amenity
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Total      int      `json:"total"`
}

// HealthResponse - состояние сервиса и его зависимостей
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
}

// APIKeysResponse - маскированные ключи внешних сервисов
type APIKeysResponse struct {
	Keys map[string]*string `json:"keys"`
}
