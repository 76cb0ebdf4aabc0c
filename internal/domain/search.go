package domain

import "math"

// Границы поискового запроса. Значения от клиента никогда не используются без clamp.
const (
	MaxRadiusKm     = 50.0
	DefaultRadiusKm = 5.0

	MaxLimit     = 50
	DefaultLimit = 20

	MaxGeocodeLimit     = 10
	DefaultGeocodeLimit = 5

	MaxZoom     = 18
	DefaultZoom = 18
)

// SearchQuery - запрос поиска POI рядом с точкой
type SearchQuery struct {
	Origin   GeoPoint
	Text     string
	RadiusKm float64
	Limit    int
}

// Clamp возвращает копию запроса с радиусом и лимитом в допустимых границах
func (q SearchQuery) Clamp() SearchQuery {
	q.RadiusKm = ClampRadius(q.RadiusKm)
	q.Limit = ClampLimit(q.Limit, DefaultLimit, MaxLimit)
	return q
}

// ClampRadius приводит радиус к (0, MaxRadiusKm]
func ClampRadius(radiusKm float64) float64 {
	switch {
	case math.IsNaN(radiusKm) || radiusKm <= 0:
		return DefaultRadiusKm
	case radiusKm > MaxRadiusKm:
		return MaxRadiusKm
	}
	return radiusKm
}

// ClampLimit приводит лимит к [1, max]; неуказанный лимит заменяется на def
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// SpatialQuery - ограниченный пространственный запрос к источнику POI.
// Создаётся только через NewSpatialQuery, поэтому радиус и лимит всегда в границах.
type SpatialQuery struct {
	Origin       GeoPoint
	Tag          string
	RadiusMeters int
	Limit        int
}

// NewSpatialQuery строит запрос для тега в радиусе radiusKm от origin
func NewSpatialQuery(origin GeoPoint, tag string, radiusKm float64, limit int) SpatialQuery {
	return SpatialQuery{
		Origin:       origin,
		Tag:          tag,
		RadiusMeters: int(math.Round(ClampRadius(radiusKm) * 1000)),
		Limit:        ClampLimit(limit, DefaultLimit, MaxLimit),
	}
}

// GeocodeQuery - прямое геокодирование по тексту
type GeocodeQuery struct {
	Text    string `json:"query"`
	Limit   int    `json:"limit"`
	Country string `json:"country,omitempty"`
}

// ReverseQuery - обратное геокодирование координат
type ReverseQuery struct {
	Point GeoPoint `json:"point"`
	Zoom  int      `json:"zoom"`
}

// ClampZoom приводит zoom к [0, MaxZoom]
func ClampZoom(zoom int) int {
	if zoom < 0 {
		return 0
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
