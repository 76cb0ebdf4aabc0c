package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/usecase"
)

func result(id string, distance *float64) domain.LocationResult {
	return domain.LocationResult{ID: id, DistanceKm: distance}
}

func ids(results []domain.LocationResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	input := []domain.LocationResult{
		result("far", ptrFloat64(3.5)),
		result("unknown", nil),
		result("near", ptrFloat64(0.4)),
		result("tie-a", ptrFloat64(1.2)),
		result("tie-b", ptrFloat64(1.2)),
	}

	t.Run("sorted with unknown distance last", func(t *testing.T) {
		got := usecase.Rank(input, 10)
		assert.Equal(t, []string{"near", "tie-a", "tie-b", "far", "unknown"}, ids(got))
	})

	t.Run("truncates after sorting", func(t *testing.T) {
		got := usecase.Rank(input, 2)
		assert.Equal(t, []string{"near", "tie-a"}, ids(got))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := usecase.Rank(input, 4)
		assert.Equal(t, once, usecase.Rank(once, 4))
	})

	t.Run("input is not modified", func(t *testing.T) {
		usecase.Rank(input, 1)
		assert.Equal(t, "far", input[0].ID)
		assert.Len(t, input, 5)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, usecase.Rank(nil, 5))
	})
}
