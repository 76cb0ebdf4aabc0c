package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
)

// historyRow - строка search_history; точка хранится двумя nullable колонками
type historyRow struct {
	ID          uuid.UUID       `db:"id"`
	ClientID    string          `db:"client_id"`
	Kind        string          `db:"kind"`
	Query       string          `db:"query"`
	Payload     sql.NullString  `db:"payload"`
	ResultCount int             `db:"result_count"`
	OriginLat   sql.NullFloat64 `db:"origin_lat"`
	OriginLon   sql.NullFloat64 `db:"origin_lon"`
	CreatedAt   time.Time       `db:"created_at"`
}

func toRow(rec domain.HistoryRecord) historyRow {
	row := historyRow{
		ID:          rec.ID,
		ClientID:    rec.ClientID,
		Kind:        string(rec.Kind),
		Query:       rec.Query,
		ResultCount: rec.ResultCount,
		CreatedAt:   rec.CreatedAt,
	}
	if len(rec.Payload) > 0 {
		row.Payload = sql.NullString{String: string(rec.Payload), Valid: true}
	}
	if rec.Origin != nil {
		row.OriginLat = sql.NullFloat64{Float64: rec.Origin.Lat, Valid: true}
		row.OriginLon = sql.NullFloat64{Float64: rec.Origin.Lon, Valid: true}
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (r historyRow) toDomain() domain.HistoryRecord {
	rec := domain.HistoryRecord{
		ID:          r.ID,
		ClientID:    r.ClientID,
		Kind:        domain.HistoryKind(r.Kind),
		Query:       r.Query,
		ResultCount: r.ResultCount,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.Payload.Valid {
		rec.Payload = json.RawMessage(r.Payload.String)
	}
	if r.OriginLat.Valid && r.OriginLon.Valid {
		rec.Origin = &domain.GeoPoint{Lat: r.OriginLat.Float64, Lon: r.OriginLon.Float64}
	}
	return rec
}

type historyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewHistoryRepository - хранилище истории в таблице search_history
func NewHistoryRepository(db *DB) repository.HistoryRepository {
	return &historyRepository{
		db:     db,
		logger: db.logger,
	}
}

const upsertHistoryQuery = `
	INSERT INTO search_history (
		id, client_id, kind, query, payload, result_count, origin_lat, origin_lon, created_at
	) VALUES (
		:id, :client_id, :kind, :query, CAST(:payload AS JSONB), :result_count, :origin_lat, :origin_lon, :created_at
	)
	ON CONFLICT (id) DO UPDATE SET
		query        = EXCLUDED.query,
		payload      = EXCLUDED.payload,
		result_count = EXCLUDED.result_count,
		origin_lat   = EXCLUDED.origin_lat,
		origin_lon   = EXCLUDED.origin_lon,
		updated_at   = now()
`

// Record сохраняет одну запись
func (r *historyRepository) Record(ctx context.Context, rec domain.HistoryRecord) error {
	return r.Upsert(ctx, []domain.HistoryRecord{rec})
}

// Upsert сохраняет пачку записей в одной транзакции
func (r *historyRepository) Upsert(ctx context.Context, records []domain.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, upsertHistoryQuery)
		if err != nil {
			return fmt.Errorf("prepare history upsert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, toRow(rec)); err != nil {
				r.logger.Error("Failed to upsert history record",
					zap.String("id", rec.ID.String()),
					zap.Error(err))
				return fmt.Errorf("upsert history %s: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("History records upserted", zap.Int("count", len(records)))
	return nil
}

// ListByClient возвращает последние записи клиента; пустой kinds означает все типы
func (r *historyRepository) ListByClient(
	ctx context.Context,
	clientID string,
	kinds []domain.HistoryKind,
	limit int,
) ([]domain.HistoryRecord, error) {
	kindFilter := make([]string, 0, len(kinds))
	for _, k := range kinds {
		kindFilter = append(kindFilter, string(k))
	}

	query := `
		SELECT id, client_id, kind, query, payload::text AS payload, result_count,
		       origin_lat, origin_lon, created_at
		FROM search_history
		WHERE client_id = $1
		  AND (cardinality($2::text[]) = 0 OR kind = ANY($2::text[]))
		ORDER BY created_at DESC
		LIMIT $3
	`

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, clientID, pq.Array(kindFilter), limit); err != nil {
		r.logger.Error("Failed to list history",
			zap.String("client_id", clientID),
			zap.Error(err))
		return nil, fmt.Errorf("list history: %w", err)
	}

	records := make([]domain.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records, nil
}
