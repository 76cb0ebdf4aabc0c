package repository

import (
	"context"
	"time"
)

// CacheRepository - best-effort кеш ответов внешних API; вызывающий код работает и без него
type CacheRepository interface {
	// Get получает значение из кеша по ключу; (nil, nil) при промахе
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с TTL; записи без срока жизни не допускаются
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)
}
