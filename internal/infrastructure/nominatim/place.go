package nominatim

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/geo-gateway/internal/domain"
)

// place - результат format=jsonv2
type place struct {
	PlaceID     int64             `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMID       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// decodePlace разбирает одну запись геокодера в RawElement с точечной геометрией
func decodePlace(raw json.RawMessage) (domain.RawElement, error) {
	var p place
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.RawElement{}, fmt.Errorf("decode nominatim place: %w", err)
	}
	return p.toRawElement()
}

func (p place) toRawElement() (domain.RawElement, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.RawElement{}, fmt.Errorf("invalid lat %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.RawElement{}, fmt.Errorf("invalid lon %q: %w", p.Lon, err)
	}

	tags := make(map[string]string, len(p.Address)+1)
	for k, v := range p.Address {
		tags["addr:"+k] = v
	}
	if p.Name != "" {
		tags["name"] = p.Name
	}

	var id string
	if p.PlaceID != 0 {
		id = strconv.FormatInt(p.PlaceID, 10)
	}

	return domain.RawElement{
		Kind:        domain.GeometryPoint,
		Type:        p.Type,
		ID:          id,
		Coordinate:  &domain.GeoPoint{Lat: lat, Lon: lon},
		DisplayName: p.DisplayName,
		Category:    p.Category,
		Tags:        tags,
	}, nil
}
