package domain

import "time"

// GeoPoint - географическая точка (WGS84)
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid проверяет, что координаты лежат в допустимых диапазонах
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// RateLimitStats - агрегированные счётчики решений rate limiter'а
type RateLimitStats struct {
	Allowed   int64     `json:"allowed"`
	Denied    int64     `json:"denied"`
	Limit     int       `json:"limit"`
	Window    string    `json:"window"`
	Clients   int       `json:"tracked_clients"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RateLimitEvent - одно решение rate limiter'а для записи в статистику
type RateLimitEvent struct {
	ClientID  string
	Operation string
	Allowed   bool
	At        time.Time
}
