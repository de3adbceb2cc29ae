package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/qrave1/RoomSignal/internal/domain/events"
	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/domain/keys"
	"github.com/qrave1/RoomSignal/internal/domain/models"
)

type sentEvent struct {
	name    string
	payload any
}

// recordingSink складывает события в канал, тест читает их по одному.
type recordingSink struct {
	events chan sentEvent
	err    error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan sentEvent, 256)}
}

func (s *recordingSink) Send(event string, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.events <- sentEvent{name: event, payload: payload}
	return nil
}

func (s *recordingSink) next(t *testing.T) sentEvent {
	t.Helper()
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return sentEvent{}
	}
}

func (s *recordingSink) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-s.events:
		t.Fatalf("unexpected event %q", ev.name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStreamRoomForwardsNewMessagesAndHeartbeats(t *testing.T) {
	store, clk := newTestStore(t)
	messages := NewMessageUsecase(store, clk, time.Hour, 100)
	uc := NewStreamUsecase(messages, clk, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	sink := newRecordingSink()

	done := make(chan error, 1)
	go func() { done <- uc.StreamRoom(ctx, sink, "r1", "a") }()

	if ev := sink.next(t); ev.name != events.Connected {
		t.Fatalf("first event = %q, want connected", ev.name)
	}
	clk.WaitForTimers(1)

	for _, text := range []string{"one", "two"} {
		if _, _, err := messages.Send(ctx, input.SendMessageInput{RoomID: "r1", UserID: "b", Message: text}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	clk.Advance(time.Second)

	for _, want := range []string{"one", "two"} {
		ev := sink.next(t)
		if ev.name != events.Message {
			t.Fatalf("event = %q, want message", ev.name)
		}
		if msg := ev.payload.(models.RoomMessage); msg.Message != want {
			t.Fatalf("message = %q, want %q", msg.Message, want)
		}
	}
	if ev := sink.next(t); ev.name != events.Heartbeat {
		t.Fatalf("event = %q, want heartbeat", ev.name)
	}

	// Тик без новых сообщений - только heartbeat
	clk.Advance(time.Second)
	if ev := sink.next(t); ev.name != events.Heartbeat {
		t.Fatalf("idle tick event = %q, want heartbeat", ev.name)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("StreamRoom returned %v after cancel, want nil", err)
	}

	clk.Advance(time.Second)
	sink.expectNone(t)

	if got := clk.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() = %d after teardown, want 0", got)
	}
}

func TestStreamRoomMalformedLogDegradesToEmpty(t *testing.T) {
	store, clk := newTestStore(t)
	messages := NewMessageUsecase(store, clk, time.Hour, 100)
	uc := NewStreamUsecase(messages, clk, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Set(ctx, keys.RoomMessages("r1"), []byte("not json"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	sink := newRecordingSink()
	go func() { _ = uc.StreamRoom(ctx, sink, "r1", "a") }()

	sink.next(t)
	clk.WaitForTimers(1)
	clk.Advance(time.Second)

	if ev := sink.next(t); ev.name != events.Heartbeat {
		t.Fatalf("event = %q, want heartbeat", ev.name)
	}
}

func TestStreamGlobalEchoesBody(t *testing.T) {
	_, clk := newTestStore(t)
	uc := NewStreamUsecase(nil, clk, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newRecordingSink()
	body := json.RawMessage(`{"topic":"x"}`)

	go func() { _ = uc.StreamGlobal(ctx, sink, body) }()

	if ev := sink.next(t); ev.name != events.Connected {
		t.Fatalf("first event = %q, want connected", ev.name)
	}
	clk.WaitForTimers(1)

	for range 3 {
		clk.Advance(time.Second)
		ev := sink.next(t)
		if ev.name != events.Message {
			t.Fatalf("event = %q, want message", ev.name)
		}
		if tick := ev.payload.(events.TickEvent); string(tick.Body) != string(body) {
			t.Fatalf("tick body = %s, want %s", tick.Body, body)
		}
	}
}

func TestStreamStopsOnSinkError(t *testing.T) {
	_, clk := newTestStore(t)
	uc := NewStreamUsecase(nil, clk, time.Second)

	sink := newRecordingSink()
	sink.err = errors.New("broken pipe")

	err := uc.StreamGlobal(context.Background(), sink, nil)
	if err == nil {
		t.Fatal("StreamGlobal returned nil on sink error")
	}
}
