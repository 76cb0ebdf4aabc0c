package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable - сеть, таймаут или отмена при обращении к провайдеру
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound - провайдер ответил, но объект не найден
	ErrNotFound = errors.New("not found")
)

// UpstreamStatusError - провайдер вернул не-2xx статус
type UpstreamStatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s API error: status %d", e.Provider, e.StatusCode)
}
