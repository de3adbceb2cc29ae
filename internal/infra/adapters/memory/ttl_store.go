package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// TTLStore - хранилище в памяти процесса. Истекшие ключи не видны при
// чтении сразу, а физически удаляются в Sweep.
type TTLStore struct {
	clock clock.Clock

	entries map[string]entry
	mu      sync.RWMutex
}

var _ ports.TTLStore = (*TTLStore)(nil)

func NewTTLStore(clk clock.Clock) *TTLStore {
	return &TTLStore{
		clock:   clk,
		entries: make(map[string]entry),
	}
}

func (s *TTLStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.liveLocked(key)
	if !ok {
		return nil, ports.ErrNotFound
	}

	return bytes.Clone(e.value), nil
}

func (s *TTLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(key, value, ttl)

	return nil
}

func (s *TTLStore) CompareAndSwap(ctx context.Context, key string, old, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.liveLocked(key)

	switch {
	case old == nil && ok:
		return false, nil
	case old != nil && (!ok || !bytes.Equal(current.value, old)):
		return false, nil
	}

	s.putLocked(key, value, ttl)

	return true, nil
}

// Sweep удаляет истекшие ключи и возвращает их количество.
func (s *TTLStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0

	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}

	return removed, nil
}

func (s *TTLStore) liveLocked(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(e.expiresAt) {
		return entry{}, false
	}

	return e, true
}

func (s *TTLStore) putLocked(key string, value []byte, ttl time.Duration) {
	s.entries[key] = entry{
		value:     bytes.Clone(value),
		expiresAt: s.clock.Now().Add(ttl),
	}
}
