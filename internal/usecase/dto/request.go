package dto

// NearbyRequest - поиск POI рядом с точкой
type NearbyRequest struct {
	Lat      *float64 `json:"lat" validate:"required,min=-90,max=90" example:"28.6139"`
	Lon      *float64 `json:"lon" validate:"required,min=-180,max=180" example:"77.2090"`
	Query    string   `json:"query" validate:"required,min=1,max=100" example:"restaurant"`
	RadiusKm float64  `json:"radius_km,omitempty" example:"5"`
	Limit    int      `json:"limit,omitempty" example:"10"`
}

// GeocodeRequest - прямое геокодирование
type GeocodeRequest struct {
	Query   string `json:"query" validate:"required,min=2,max=256" example:"India Gate, New Delhi"`
	Limit   int    `json:"limit,omitempty" example:"5"`
	Country string `json:"country,omitempty" validate:"omitempty,len=2,alpha" example:"in"`
}

// ReverseGeocodeRequest - обратное геокодирование (query-параметры)
type ReverseGeocodeRequest struct {
	Lat  *float64 `query:"lat" validate:"required,min=-90,max=90"`
	Lon  *float64 `query:"lon" validate:"required,min=-180,max=180"`
	Zoom int      `query:"zoom" validate:"min=0,max=18"`
}

// MarkerRequest - маркер пользователя для офлайн-синхронизации.
// ID задаётся клиентом, повторная отправка обновляет тот же маркер.
type MarkerRequest struct {
	ID       string   `json:"id,omitempty" validate:"omitempty,uuid"`
	Lat      *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon      *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Name     string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Category string   `json:"category,omitempty" validate:"omitempty,max=64"`
	Note     string   `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// HistoryListRequest - выборка истории клиента
type HistoryListRequest struct {
	Kinds []string `query:"kind" validate:"omitempty,dive,oneof=nearby geocode reverse marker"`
	Limit int      `query:"limit" validate:"omitempty,min=1,max=200"`
}
