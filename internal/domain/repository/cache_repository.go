package repository

import (
	"context"
	"time"
)

// CacheRepository - интерфейс для работы с кешем
type CacheRepository interface {
	// Set устанавливает значение по ключу с временем жизни
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Get возвращает значение по ключу
	Get(ctx context.Context, key string) (string, error)

	// Delete удаляет ключ
	Delete(ctx context.Context, key string) error

	// Increment атомарно увеличивает счетчик по ключу
	Increment(ctx context.Context, key string) (int64, error)

	// Expire устанавливает время жизни ключа
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
