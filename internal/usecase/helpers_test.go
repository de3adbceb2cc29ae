package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/domain/keys"
	"github.com/qrave1/RoomSignal/internal/domain/models"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
	"github.com/qrave1/RoomSignal/internal/infra/adapters/memory"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// countingStore считает записи в хранилище.
type countingStore struct {
	ports.TTLStore

	mu     sync.Mutex
	writes int
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.TTLStore.Set(ctx, key, value, ttl)
}

func (s *countingStore) CompareAndSwap(ctx context.Context, key string, old, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.TTLStore.CompareAndSwap(ctx, key, old, value, ttl)
	if ok {
		s.mu.Lock()
		s.writes++
		s.mu.Unlock()
	}
	return ok, err
}

func (s *countingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func newTestStore(t *testing.T) (*countingStore, *clock.FakeClock) {
	t.Helper()

	clk := clock.Fake(epoch)
	return &countingStore{TTLStore: memory.NewTTLStore(clk)}, clk
}

func roomMembers(t *testing.T, store ports.TTLStore, roomID string) []models.Member {
	t.Helper()

	_, members, err := readList[models.Member](context.Background(), store, keys.RoomMembers(roomID))
	if err != nil {
		t.Fatalf("read members: %v", err)
	}
	return members
}
