package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// payloadField - поле записи стрима с JSON-телом
	payloadField = "data"

	consumeBlock = time.Second

	// DefaultMaxLen - приблизительный предел длины стрима (XADD MAXLEN ~)
	DefaultMaxLen = 100_000
)

type streamRepository struct {
	client *redis.Client
	logger *zap.Logger
	maxLen int64
}

// StreamOption настраивает streamRepository
type StreamOption func(*streamRepository)

// WithMaxLen задаёт предел длины стрима; 0 отключает обрезку
func WithMaxLen(n int64) StreamOption {
	return func(r *streamRepository) { r.maxLen = n }
}

// NewStreamRepository создаёт репозиторий поверх Redis Streams
func NewStreamRepository(client *redis.Client, logger *zap.Logger, opts ...StreamOption) repository.StreamRepository {
	r := &streamRepository{
		client: client,
		logger: logger.With(zap.String("component", "streams")),
		maxLen: DefaultMaxLen,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateConsumerGroup создаёт группу с чтением с начала стрима (ID "0").
// Уже существующая группа ошибкой не считается.
func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	switch {
	case err == nil:
		r.logger.Info("Consumer group created", zap.String("stream", stream), zap.String("group", group))
		return nil
	case strings.HasPrefix(err.Error(), "BUSYGROUP"):
		return nil
	default:
		return fmt.Errorf("failed to create consumer group %s on %s: %w", group, stream, err)
	}
}

// ConsumeBatch читает до count новых сообщений группы, блокируясь не дольше consumeBlock.
// Нет сообщений - пустой результат без ошибки.
func (r *streamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    consumeBlock,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	messages, orphans := splitMessages(streams)
	if len(orphans) > 0 {
		// без payload сообщение не обработать никогда
		r.logger.Warn("Dropping stream messages without payload",
			zap.String("stream", stream),
			zap.Strings("message_ids", orphans))
		if err := r.AckMessages(ctx, stream, group, orphans); err != nil {
			r.logger.Warn("Failed to ack messages without payload", zap.Error(err))
		}
	}
	return messages, nil
}

// ClaimStale переназначает consumer'у неподтверждённые сообщения старше minIdle
// (XAUTOCLAIM с начала pending-списка). Так подбираются записи упавших
// и перезапущенных consumer'ов.
func (r *streamRepository) ClaimStale(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]domain.StreamMessage, error) {
	claimed, _, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending messages: %w", err)
	}

	messages, orphans := splitMessages([]redis.XStream{{Stream: stream, Messages: claimed}})
	if len(orphans) > 0 {
		if err := r.AckMessages(ctx, stream, group, orphans); err != nil {
			r.logger.Warn("Failed to ack claimed messages without payload", zap.Error(err))
		}
	}
	if len(messages) > 0 {
		r.logger.Info("Claimed stale stream messages",
			zap.String("stream", stream),
			zap.String("consumer", consumer),
			zap.Int("count", len(messages)))
	}
	return messages, nil
}

func splitMessages(streams []redis.XStream) (messages []domain.StreamMessage, orphans []string) {
	for _, s := range streams {
		for _, msg := range s.Messages {
			data, ok := msg.Values[payloadField].(string)
			if !ok {
				orphans = append(orphans, msg.ID)
				continue
			}
			messages = append(messages, domain.StreamMessage{ID: msg.ID, Data: data})
		}
	}
	return messages, orphans
}

// AckMessages подтверждает обработку сообщений группой
func (r *streamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := r.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("failed to ack %d messages: %w", len(messageIDs), err)
	}
	return nil
}

// PublishToStream кладёт JSON-представление data в поле payloadField
func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal stream payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{payloadField: string(payload)},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		r.logger.Error("Failed to publish to stream", zap.String("stream", stream), zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Published to stream", zap.String("stream", stream), zap.String("message_id", id))
	return nil
}
