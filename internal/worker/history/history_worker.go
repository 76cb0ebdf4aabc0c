package history

import (
	"context"
	"fmt"
	"time"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/worker"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultBatchSize  = 50
	maxUpsertAttempts = 3
	upsertRetryDelay  = 200 * time.Millisecond

	// pending-записи старше reclaimMinIdle перечитываются не реже раза в reclaimInterval
	reclaimInterval = 30 * time.Second
	reclaimMinIdle  = time.Minute
)

// Worker переносит записи истории из Redis Stream в постоянное хранилище
type Worker struct {
	*worker.BaseWorker
	streams   repository.StreamRepository
	repo      repository.HistoryRepository
	batchSize int64

	reclaimEvery time.Duration
	minIdle      time.Duration
	lastReclaim  time.Time
}

// NewWorker создает воркер истории
func NewWorker(
	streams repository.StreamRepository,
	repo repository.HistoryRepository,
	consumerGroup string,
	batchSize int,
	logger *zap.Logger,
	opts ...worker.Option,
) *Worker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Worker{
		BaseWorker: worker.NewBaseWorker("history-writer", consumerGroup, logger, opts...),
		streams:    streams,
		repo:       repo,
		batchSize:  int64(batchSize),

		reclaimEvery: reclaimInterval,
		minIdle:      reclaimMinIdle,
	}
}

// Start создаёт consumer group и обрабатывает пачки до остановки
func (w *Worker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting history worker",
		zap.String("stream", domain.StreamHistoryRecord),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int64("batch_size", w.batchSize))

	if err := w.streams.CreateConsumerGroup(ctx, domain.StreamHistoryRecord, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	return w.Loop(ctx, w.processBatch)
}

// processBatch берёт пачку (сначала зависшие pending-записи, затем новые),
// сохраняет валидные записи и подтверждает их.
// Битые сообщения подтверждаются сразу, чтобы не застревать в pending.
func (w *Worker) processBatch(ctx context.Context) (int, error) {
	messages := w.reclaim(ctx)
	if len(messages) == 0 {
		var err error
		messages, err = w.streams.ConsumeBatch(ctx, domain.StreamHistoryRecord, w.ConsumerGroup(), w.ConsumerName(), w.batchSize)
		if err != nil {
			return 0, fmt.Errorf("failed to consume batch: %w", err)
		}
	}
	if len(messages) == 0 {
		return 0, nil
	}
	return w.store(ctx, messages)
}

// reclaim забирает записи, которые не удалось сохранить раньше, в том числе
// оставшиеся за consumer'ами прошлых запусков. Первый вызов срабатывает сразу.
func (w *Worker) reclaim(ctx context.Context) []domain.StreamMessage {
	if !w.lastReclaim.IsZero() && time.Since(w.lastReclaim) < w.reclaimEvery {
		return nil
	}
	w.lastReclaim = time.Now()

	messages, err := w.streams.ClaimStale(ctx, domain.StreamHistoryRecord, w.ConsumerGroup(), w.ConsumerName(), w.minIdle, w.batchSize)
	if err != nil {
		w.Logger().Warn("Failed to reclaim pending history records", zap.Error(err))
		return nil
	}
	if int64(len(messages)) == w.batchSize {
		// в pending ещё могут быть записи: следующий шаг снова начнёт с reclaim
		w.lastReclaim = time.Time{}
	}
	return messages
}

func (w *Worker) store(ctx context.Context, messages []domain.StreamMessage) (int, error) {
	logger := w.Logger()

	records := make([]domain.HistoryRecord, 0, len(messages))
	okIDs := make([]string, 0, len(messages))
	badIDs := make([]string, 0)

	for _, msg := range messages {
		record, err := parseRecord(msg)
		if err != nil {
			logger.Warn("Failed to parse history record, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			badIDs = append(badIDs, msg.ID)
			continue
		}
		records = append(records, record)
		okIDs = append(okIDs, msg.ID)
	}

	if len(badIDs) > 0 {
		if err := w.streams.AckMessages(ctx, domain.StreamHistoryRecord, w.ConsumerGroup(), badIDs); err != nil {
			logger.Error("Failed to ack malformed messages", zap.Error(err))
		}
	}

	if len(records) == 0 {
		return len(messages), nil
	}

	if err := w.upsertWithRetry(ctx, records); err != nil {
		// без ACK записи остаются в pending и вернутся через reclaim
		return len(messages), fmt.Errorf("failed to store %d history records: %w", len(records), err)
	}

	if err := w.streams.AckMessages(ctx, domain.StreamHistoryRecord, w.ConsumerGroup(), okIDs); err != nil {
		return len(messages), fmt.Errorf("failed to ack history records: %w", err)
	}

	logger.Debug("History batch stored",
		zap.Int("stored", len(records)),
		zap.Int("skipped", len(badIDs)))

	return len(messages), nil
}

func (w *Worker) upsertWithRetry(ctx context.Context, records []domain.HistoryRecord) error {
	var err error
	for attempt := 1; attempt <= maxUpsertAttempts; attempt++ {
		if err = w.repo.Upsert(ctx, records); err == nil {
			return nil
		}

		w.Logger().Warn("History upsert failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < maxUpsertAttempts && !w.Sleep(ctx, upsertRetryDelay*time.Duration(attempt)) {
			return err
		}
	}
	return err
}

func parseRecord(msg domain.StreamMessage) (domain.HistoryRecord, error) {
	var record domain.HistoryRecord
	if err := msg.Decode(&record); err != nil {
		return record, err
	}
	if record.ClientID == "" || record.Kind == "" {
		return record, fmt.Errorf("record without client_id or kind")
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return record, nil
}
