package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision - результат проверки квоты для одного запроса
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type rateState struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter - лимит N запросов на клиента в фиксированном окне P.
// Окно начинается с первого запроса клиента, а не с границы часа.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateState

	limit      int
	window     time.Duration
	sweepEvery time.Duration
	now        func() time.Time
}

type Option func(*FixedWindowLimiter)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(l *FixedWindowLimiter) { l.now = now }
}

// WithSweepInterval задаёт период очистки устаревших записей
func WithSweepInterval(d time.Duration) Option {
	return func(l *FixedWindowLimiter) { l.sweepEvery = d }
}

// NewFixedWindowLimiter - создание лимитера на limit запросов за window
func NewFixedWindowLimiter(limit int, window time.Duration, opts ...Option) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		entries:    make(map[string]*rateState),
		limit:      limit,
		window:     window,
		sweepEvery: 10 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *FixedWindowLimiter) Limit() int { return l.limit }
func (l *FixedWindowLimiter) Window() time.Duration { return l.window }

// Admit засчитывает запрос клиента identity и решает, пропустить ли его.
// Проверка и инкремент выполняются под одной блокировкой.
func (l *FixedWindowLimiter) Admit(identity string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.entries[identity]
	if !ok || !now.Before(st.resetAt) {
		st = &rateState{count: 1, resetAt: now.Add(l.window)}
		l.entries[identity] = st
		return l.decision(st, now)
	}

	st.count++
	return l.decision(st, now)
}

func (l *FixedWindowLimiter) decision(st *rateState, now time.Time) Decision {
	d := Decision{
		Allowed: st.count <= l.limit,
		Limit:   l.limit,
		ResetAt: st.resetAt,
	}
	if remaining := l.limit - st.count; remaining > 0 {
		d.Remaining = remaining
	}
	if !d.Allowed {
		d.RetryAfter = st.resetAt.Sub(now)
	}
	return d
}

// Sweep удаляет записи, окно которых закончилось больше одного окна назад.
// Такой клиент в любом случае получил бы новое окно, поэтому решения не меняются.
func (l *FixedWindowLimiter) Sweep() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, st := range l.entries {
		if st.resetAt.Before(cutoff) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// StartJanitor запускает периодический Sweep до отмены ctx
func (l *FixedWindowLimiter) StartJanitor(ctx context.Context) {
	if l.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(l.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}

// Len - количество отслеживаемых клиентов
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
