package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout - время ожидания завершения воркеров, если вызывающий не задал своё
const DefaultShutdownTimeout = 30 * time.Second

// ErrNoWorkers - Start вызван без зарегистрированных воркеров
var ErrNoWorkers = errors.New("no workers registered")

// WorkerManager управляет несколькими воркерами
type WorkerManager struct {
	workers []Worker
	logger  *zap.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	failed  map[string]error
}

// NewWorkerManager создает новый WorkerManager
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{
		workers: make([]Worker, 0),
		logger:  logger,
		failed:  make(map[string]error),
	}
}

// Register регистрирует воркер
func (m *WorkerManager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workers = append(m.workers, w)
	m.logger.Info("Worker registered", zap.String("name", w.Name()))
}

// Start запускает все зарегистрированные воркеры в отдельных горутинах
func (m *WorkerManager) Start(ctx context.Context) error {
	workers := m.snapshot()
	if len(workers) == 0 {
		return ErrNoWorkers
	}

	m.logger.Info("Starting workers", zap.Int("count", len(workers)))

	for _, w := range workers {
		m.wg.Add(1)
		go func(w Worker) {
			defer m.wg.Done()

			m.logger.Info("Starting worker", zap.String("name", w.Name()))
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error("Worker failed",
					zap.String("name", w.Name()),
					zap.Error(err))

				m.mu.Lock()
				m.failed[w.Name()] = err
				m.mu.Unlock()
			}
		}(w)
	}

	return nil
}

// Failed возвращает ошибки воркеров, завершившихся аварийно
func (m *WorkerManager) Failed() map[string]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]error, len(m.failed))
	for name, err := range m.failed {
		result[name] = err
	}
	return result
}

// Stop останавливает все воркеры и ждёт их завершения до истечения ctx
func (m *WorkerManager) Stop(ctx context.Context) error {
	workers := m.snapshot()

	m.logger.Info("Stopping workers", zap.Int("count", len(workers)))

	for _, w := range workers {
		if err := w.Stop(); err != nil {
			m.logger.Error("Failed to stop worker",
				zap.String("name", w.Name()),
				zap.Error(err))
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultShutdownTimeout)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("All workers stopped gracefully")
		return nil
	case <-ctx.Done():
		m.logger.Warn("Workers shutdown timed out, some batches may not have completed")
		return fmt.Errorf("workers shutdown: %w", ctx.Err())
	}
}

func (m *WorkerManager) snapshot() []Worker {
	m.mu.Lock()
	defer m.mu.Unlock()

	workers := make([]Worker, len(m.workers))
	copy(workers, m.workers)
	return workers
}
