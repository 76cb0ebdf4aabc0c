package repository

import (
	"context"
	"time"

	"github.com/geo-gateway/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// ConsumeBatch читает до count сообщений из стрима без долгой блокировки
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error)

	// ClaimStale забирает consumer'у сообщения, висящие в pending группы дольше minIdle
	ClaimStale(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]domain.StreamMessage, error)

	// AckMessages подтверждает обработку сообщений
	AckMessages(ctx context.Context, stream, group string, messageIDs []string) error

	// CreateConsumerGroup создаёт consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
