package overpass

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/geo-gateway/internal/domain"
)

const defaultQueryTimeout = 25 * time.Second

var tagEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// BuildQuery формирует Overpass QL для поиска amenity вокруг точки.
// Ищутся node, way и relation; для way/relation Overpass вернёт center.
func BuildQuery(q domain.SpatialQuery, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	// запрос мог быть собран в обход NewSpatialQuery
	radius := q.RadiusMeters
	if maxMeters := int(domain.MaxRadiusKm * 1000); radius <= 0 || radius > maxMeters {
		radius = int(domain.ClampRadius(float64(radius)/1000) * 1000)
	}
	limit := domain.ClampLimit(q.Limit, domain.DefaultLimit, domain.MaxLimit)

	around := fmt.Sprintf("(around:%d,%s,%s)",
		radius,
		strconv.FormatFloat(q.Origin.Lat, 'f', 7, 64),
		strconv.FormatFloat(q.Origin.Lon, 'f', 7, 64),
	)
	filter := fmt.Sprintf(`["amenity"="%s"]`, tagEscaper.Replace(q.Tag))

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", int(timeout.Seconds()))
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s%s%s;\n", kind, filter, around)
	}
	fmt.Fprintf(&b, ");\nout center %d;", limit)
	return b.String()
}
