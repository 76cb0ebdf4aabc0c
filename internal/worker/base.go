package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultErrorBackoff = time.Second
	defaultIdleBackoff  = 100 * time.Millisecond
)

// BaseWorker содержит общую логику воркеров Redis Streams: остановку и цикл опроса
type BaseWorker struct {
	name          string
	consumerGroup string
	consumerName  string
	logger        *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once

	errorBackoff time.Duration
	idleBackoff  time.Duration
}

// Option - настройка BaseWorker
type Option func(*BaseWorker)

// WithBackoff задаёт паузы после ошибки и после пустой пачки
func WithBackoff(onError, onIdle time.Duration) Option {
	return func(w *BaseWorker) {
		if onError > 0 {
			w.errorBackoff = onError
		}
		if onIdle > 0 {
			w.idleBackoff = onIdle
		}
	}
}

// WithConsumerName переопределяет имя потребителя в consumer group
func WithConsumerName(name string) Option {
	return func(w *BaseWorker) {
		if name != "" {
			w.consumerName = name
		}
	}
}

// NewBaseWorker создает новый BaseWorker; имя потребителя по умолчанию hostname-pid
func NewBaseWorker(name, consumerGroup string, logger *zap.Logger, opts ...Option) *BaseWorker {
	hostname, _ := os.Hostname()

	w := &BaseWorker{
		name:          name,
		consumerGroup: consumerGroup,
		consumerName:  fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		logger:        logger.With(zap.String("worker", name)),
		stopChan:      make(chan struct{}),
		errorBackoff:  defaultErrorBackoff,
		idleBackoff:   defaultIdleBackoff,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop останавливает воркер, повторный вызов ничего не делает
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker")
		close(w.stopChan)
	})
	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	select {
	case <-w.stopChan:
		return true
	default:
		return false
	}
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

// ConsumerGroup возвращает имя consumer group
func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// ConsumerName возвращает имя потребителя внутри группы
func (w *BaseWorker) ConsumerName() string {
	return w.consumerName
}

// Logger возвращает логгер
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// Loop вызывает step, пока воркер не остановлен или ctx не отменён.
// После ошибки ждёт errorBackoff, после пустой пачки idleBackoff.
func (w *BaseWorker) Loop(ctx context.Context, step StepFunc) error {
	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			w.logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		processed, err := step(ctx)
		switch {
		case err != nil:
			w.logger.Error("Worker step failed", zap.Error(err))
			if !w.Sleep(ctx, w.errorBackoff) {
				return w.exitErr(ctx)
			}
		case processed == 0:
			if !w.Sleep(ctx, w.idleBackoff) {
				return w.exitErr(ctx)
			}
		}
	}
}

// Sleep ждёт d; false если за это время воркер остановили или ctx отменён
func (w *BaseWorker) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-w.stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}

func (w *BaseWorker) exitErr(ctx context.Context) error {
	if w.IsStopped() {
		w.logger.Info("Worker stopped")
		return nil
	}
	return ctx.Err()
}
