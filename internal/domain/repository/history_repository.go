package repository

import (
	"context"

	"github.com/geo-gateway/internal/domain"
)

// HistorySink принимает записи истории. Запись best-effort: ошибка не влияет на ответ клиенту.
type HistorySink interface {
	Record(ctx context.Context, record domain.HistoryRecord) error
}

// HistoryRepository - постоянное хранилище истории (документ на запись)
type HistoryRepository interface {
	HistorySink

	// Upsert сохраняет пачку записей, повторная запись с тем же ID обновляет документ
	Upsert(ctx context.Context, records []domain.HistoryRecord) error

	// ListByClient возвращает последние записи клиента, опционально по типам
	ListByClient(ctx context.Context, clientID string, kinds []domain.HistoryKind, limit int) ([]domain.HistoryRecord, error)
}
