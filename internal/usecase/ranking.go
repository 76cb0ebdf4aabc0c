package usecase

import (
	"sort"

	"github.com/geo-gateway/internal/domain"
)

// Rank сортирует результаты по возрастанию расстояния и обрезает до limit.
// Результаты без расстояния идут последними, равные сохраняют исходный порядок.
// Входной срез не изменяется.
func Rank(results []domain.LocationResult, limit int) []domain.LocationResult {
	ranked := make([]domain.LocationResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].DistanceKm, ranked[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
