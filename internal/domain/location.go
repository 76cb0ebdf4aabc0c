package domain

// LocationResult - единый формат результата поиска и геокодирования
type LocationResult struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Type       string            `json:"type,omitempty"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Address    map[string]string `json:"address,omitempty"`
	DistanceKm *float64          `json:"distance_km,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}
