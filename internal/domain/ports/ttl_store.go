package ports

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// TTLStore - общее key-value хранилище с временем жизни ключей.
type TTLStore interface {
	// Get возвращает ErrNotFound, если ключа нет или он истек.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set безусловно записывает значение и обновляет TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// CompareAndSwap записывает value, только если текущее значение равно old.
	// old == nil означает, что ключ должен отсутствовать (или истечь).
	// Возвращает false без ошибки, если условие не выполнено.
	CompareAndSwap(ctx context.Context, key string, old, value []byte, ttl time.Duration) (bool, error)
}
