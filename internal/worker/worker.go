package worker

import (
	"context"
)

// Worker - фоновый потребитель стрима
type Worker interface {
	// Start блокирует до остановки воркера или отмены ctx
	Start(ctx context.Context) error

	// Stop сигнализирует воркеру завершиться после текущей пачки
	Stop() error

	// Name возвращает имя воркера
	Name() string
}

// StepFunc - одна итерация воркера, возвращает число обработанных сообщений
type StepFunc func(ctx context.Context) (int, error)
