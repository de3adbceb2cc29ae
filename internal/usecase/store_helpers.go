package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/domain/models"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

// maxCASAttempts - сколько раз перечитываем ключ при конфликте условной записи
const maxCASAttempts = 5

// listMutation получает текущий список и возвращает новый. write=false
// означает, что записывать ничего не нужно.
type listMutation[T any] func(list []T) (next []T, write bool)

// mutateList делает read-modify-write JSON списка по ключу через
// CompareAndSwap. При конфликте список перечитывается и mutate
// вызывается заново.
func mutateList[T any](
	ctx context.Context,
	store ports.TTLStore,
	key string,
	ttl time.Duration,
	mutate listMutation[T],
) ([]T, error) {
	for range maxCASAttempts {
		raw, list, err := readList[T](ctx, store, key)
		if err != nil {
			return nil, err
		}

		next, write := mutate(list)
		if !write {
			return next, nil
		}

		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", key, err)
		}

		ok, err := store.CompareAndSwap(ctx, key, raw, data, ttl)
		if err != nil {
			return nil, fmt.Errorf("compare and swap %s: %w", key, err)
		}

		if ok {
			return next, nil
		}

		metric.RecordStoreConflict()
	}

	return nil, fmt.Errorf("update %s: %w", key, models.ErrConflict)
}

// readList читает JSON список. Отсутствующий ключ - пустой список.
// Битый JSON тоже считается пустым списком, но raw возвращается, чтобы
// CAS перезаписал именно его.
func readList[T any](ctx context.Context, store ports.TTLStore, key string) ([]byte, []T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get %s: %w", key, err)
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		slog.Warn("malformed list in store, treating as empty", slog.String("key", key), slog.Any(constant.Error, err))
		return raw, nil, nil
	}

	return raw, list, nil
}
