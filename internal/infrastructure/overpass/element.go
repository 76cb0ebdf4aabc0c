package overpass

import (
	"encoding/json"
	"fmt"

	"github.com/geo-gateway/internal/domain"
)

type response struct {
	Elements []json.RawMessage `json:"elements"`
	Remark   string            `json:"remark,omitempty"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type element struct {
	Type   string            `json:"type"`
	ID     json.Number       `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *latLon           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

// decodeElement разбирает один элемент ответа. Ошибка касается только этого элемента.
func decodeElement(raw json.RawMessage) (domain.RawElement, error) {
	var el element
	if err := json.Unmarshal(raw, &el); err != nil {
		return domain.RawElement{}, fmt.Errorf("decode overpass element: %w", err)
	}

	out := domain.RawElement{
		Kind:     domain.GeometryUnknown,
		Type:     el.Type,
		ID:       el.ID.String(),
		Category: el.Tags["amenity"],
		Tags:     el.Tags,
	}

	switch {
	case el.Lat != nil && el.Lon != nil:
		out.Kind = domain.GeometryPoint
		out.Coordinate = &domain.GeoPoint{Lat: *el.Lat, Lon: *el.Lon}
	case el.Center != nil:
		out.Kind = domain.GeometryArea
		out.Center = &domain.GeoPoint{Lat: el.Center.Lat, Lon: el.Center.Lon}
	}

	return out, nil
}
