package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StreamHistoryRecord - стрим для асинхронной записи истории
const StreamHistoryRecord = "stream:history:record"

// HistoryKind - тип записи истории
type HistoryKind string

const (
	HistoryKindNearby  HistoryKind = "nearby"
	HistoryKindGeocode HistoryKind = "geocode"
	HistoryKindReverse HistoryKind = "reverse"
	HistoryKindMarker  HistoryKind = "marker"
)

// HistoryRecord - запись истории поиска или маркера для офлайн-синхронизации
type HistoryRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ClientID    string          `json:"client_id" db:"client_id"`
	Kind        HistoryKind     `json:"kind" db:"kind"`
	Query       string          `json:"query,omitempty" db:"query"`
	Payload     json.RawMessage `json:"payload,omitempty" db:"payload"`
	ResultCount int             `json:"result_count" db:"result_count"`
	Origin      *GeoPoint       `json:"origin,omitempty" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// NewHistoryRecord создаёт запись с новым ID и текущим временем
func NewHistoryRecord(clientID string, kind HistoryKind, query string, resultCount int, origin *GeoPoint) HistoryRecord {
	return HistoryRecord{
		ID:          uuid.New(),
		ClientID:    clientID,
		Kind:        kind,
		Query:       query,
		ResultCount: resultCount,
		Origin:      origin,
		CreatedAt:   time.Now().UTC(),
	}
}
