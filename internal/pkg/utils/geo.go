package utils

import (
	"math"

	"github.com/geo-gateway/internal/domain"
)

// EarthRadiusKm - средний радиус Земли, используемый в формуле гаверсинусов
const EarthRadiusKm = 6371.0

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm - расстояние по большому кругу между двумя точками в километрах
func DistanceKm(from, to domain.GeoPoint) float64 {
	sinLat := math.Sin(radians(to.Lat-from.Lat) / 2)
	sinLon := math.Sin(radians(to.Lon-from.Lon) / 2)

	h := sinLat*sinLat + math.Cos(radians(from.Lat))*math.Cos(radians(to.Lat))*sinLon*sinLon
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// RoundTo округляет до places знаков после запятой (half away from zero)
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
