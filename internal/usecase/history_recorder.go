package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/geo-gateway/internal/domain"
	"github.com/geo-gateway/internal/domain/repository"
)

// HistoryRecorder пишет историю в фоне: ответ клиенту не ждёт записи,
// а ошибки только логируются.
type HistoryRecorder struct {
	sink    repository.HistorySink
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewHistoryRecorder - создание нового HistoryRecorder; nil sink отключает запись
func NewHistoryRecorder(sink repository.HistorySink, timeout time.Duration, logger *zap.Logger) *HistoryRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HistoryRecorder{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
	}
}

// Enabled сообщает, настроен ли sink
func (r *HistoryRecorder) Enabled() bool {
	return r != nil && r.sink != nil
}

// Record запускает запись и сразу возвращает управление
func (r *HistoryRecorder) Record(record domain.HistoryRecord) {
	if !r.Enabled() {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Debug("History recorder closed, dropping record", zap.String("id", record.ID.String()))
		return
	}

	r.wg.Add(1)
	go r.write(record)
}

func (r *HistoryRecorder) write(record domain.HistoryRecord) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Panic in history write", zap.Any("panic", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.sink.Record(ctx, record); err != nil {
		r.logger.Warn("Failed to record history",
			zap.String("id", record.ID.String()),
			zap.String("kind", string(record.Kind)),
			zap.Error(err))
		return
	}

	r.logger.Debug("History recorded",
		zap.String("id", record.ID.String()),
		zap.String("kind", string(record.Kind)))
}

// Close перестаёт принимать записи и ждёт завершения начатых
func (r *HistoryRecorder) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
