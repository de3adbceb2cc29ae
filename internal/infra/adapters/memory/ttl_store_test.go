package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestTTLStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fake(epoch)
	store := NewTTLStore(clk)

	if err := store.Set(ctx, "k", []byte("v"), 10*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clk.Advance(9 * time.Minute)
	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get = %q, want v", got)
	}

	clk.Advance(time.Minute)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
}

func TestTTLStoreSetRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fake(epoch)
	store := NewTTLStore(clk)

	_ = store.Set(ctx, "k", []byte("v1"), time.Minute)
	clk.Advance(50 * time.Second)
	_ = store.Set(ctx, "k", []byte("v2"), time.Minute)
	clk.Advance(50 * time.Second)

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("Get = %q, want v2", got)
	}
}

func TestTTLStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	clk := clock.Fake(epoch)
	store := NewTTLStore(clk)

	ok, err := store.CompareAndSwap(ctx, "k", nil, []byte("a"), time.Minute)
	if err != nil || !ok {
		t.Fatalf("CAS on absent key = %v, %v; want true, nil", ok, err)
	}

	ok, _ = store.CompareAndSwap(ctx, "k", nil, []byte("b"), time.Minute)
	if ok {
		t.Fatal("CAS expecting absent key succeeded on live key")
	}

	ok, _ = store.CompareAndSwap(ctx, "k", []byte("stale"), []byte("b"), time.Minute)
	if ok {
		t.Fatal("CAS with stale old value succeeded")
	}

	ok, _ = store.CompareAndSwap(ctx, "k", []byte("a"), []byte("b"), time.Minute)
	if !ok {
		t.Fatal("CAS with current old value failed")
	}

	clk.Advance(time.Minute)
	ok, _ = store.CompareAndSwap(ctx, "k", nil, []byte("c"), time.Minute)
	if !ok {
		t.Fatal("CAS expecting absent key failed on expired key")
	}
}

func TestTTLStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewTTLStore(clock.Fake(epoch))

	value := []byte("abc")
	_ = store.Set(ctx, "k", value, time.Minute)
	value[0] = 'x'

	got, _ := store.Get(ctx, "k")
	got[1] = 'y'

	again, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %q", again)
	}
}
