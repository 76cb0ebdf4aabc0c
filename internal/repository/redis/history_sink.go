package redis

import (
	"context"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
)

// historyStreamSink публикует записи истории в стрим; в Postgres их переносит воркер
type historyStreamSink struct {
	streams repository.StreamRepository
}

func NewHistoryStreamSink(streams repository.StreamRepository) repository.HistorySink {
	return &historyStreamSink{streams: streams}
}

func (s *historyStreamSink) Record(ctx context.Context, record domain.HistoryRecord) error {
	return s.streams.PublishToStream(ctx, domain.StreamHistoryRecord, record)
}
