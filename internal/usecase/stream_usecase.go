package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/domain/events"
)

// EventSink пишет одно именованное событие в открытый поток.
type EventSink interface {
	Send(event string, payload any) error
}

type StreamUsecase interface {
	// StreamGlobal шлет connected и затем message с меткой времени каждый
	// интервал. body, если не пустой, повторяется в каждом событии.
	StreamGlobal(ctx context.Context, sink EventSink, body json.RawMessage) error

	// StreamRoom шлет connected, затем каждый интервал новые сообщения
	// журнала комнаты и heartbeat.
	StreamRoom(ctx context.Context, sink EventSink, roomID, userID string) error
}

type streamUsecase struct {
	messages MessageUsecase
	clock    clock.Clock
	interval time.Duration
}

func NewStreamUsecase(messages MessageUsecase, clk clock.Clock, interval time.Duration) StreamUsecase {
	return &streamUsecase{messages: messages, clock: clk, interval: interval}
}

// Оба потока заканчиваются без ошибки, когда ctx отменен (клиент ушел).
// После отмены ни одно событие не отправляется.

func (uc *streamUsecase) StreamGlobal(ctx context.Context, sink EventSink, body json.RawMessage) error {
	if err := sink.Send(events.Connected, events.ConnectedEvent{
		Message:   "connected",
		Timestamp: uc.clock.Now(),
	}); err != nil {
		return fmt.Errorf("send connected: %w", err)
	}

	ticker := uc.clock.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if ctx.Err() != nil {
			return nil
		}

		if err := sink.Send(events.Message, events.TickEvent{
			Timestamp: uc.clock.Now(),
			Body:      body,
		}); err != nil {
			return fmt.Errorf("send tick: %w", err)
		}
	}
}

func (uc *streamUsecase) StreamRoom(ctx context.Context, sink EventSink, roomID, userID string) error {
	if err := sink.Send(events.Connected, events.ConnectedEvent{
		Message:   "connected",
		RoomID:    roomID,
		UserID:    userID,
		Timestamp: uc.clock.Now(),
	}); err != nil {
		return fmt.Errorf("send connected: %w", err)
	}

	ticker := uc.clock.NewTicker(uc.interval)
	defer ticker.Stop()

	cursor := &RoomCursor{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		// Чтение журнала внутри тика: следующий тик не начнется, пока этот не закончен
		log, err := uc.messages.List(ctx, roomID)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			slog.Warn(
				"read room log, skipping tick",
				slog.String(constant.RoomID, roomID),
				slog.Any(constant.Error, err),
			)

			log = nil
		}

		for _, msg := range cursor.Advance(log) {
			if ctx.Err() != nil {
				return nil
			}

			if err := sink.Send(events.Message, msg); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}

		if ctx.Err() != nil {
			return nil
		}

		if err := sink.Send(events.Heartbeat, events.HeartbeatEvent{Timestamp: uc.clock.Now()}); err != nil {
			return fmt.Errorf("send heartbeat: %w", err)
		}
	}
}
