package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/domain/keys"
	"github.com/qrave1/RoomSignal/internal/domain/models"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

type MessageUsecase interface {
	// Send добавляет сообщение в журнал комнаты и возвращает его вместе
	// с размером журнала после добавления.
	Send(ctx context.Context, in input.SendMessageInput) (models.RoomMessage, int, error)

	// List возвращает журнал комнаты в порядке добавления. Битый JSON в
	// хранилище возвращается как ошибка, решение о деградации за вызывающим.
	List(ctx context.Context, roomID string) ([]models.RoomMessage, error)
}

type messageUsecase struct {
	store ports.TTLStore
	clock clock.Clock
	ttl   time.Duration
	limit int
}

func NewMessageUsecase(store ports.TTLStore, clk clock.Clock, ttl time.Duration, limit int) MessageUsecase {
	return &messageUsecase{store: store, clock: clk, ttl: ttl, limit: limit}
}

func (uc *messageUsecase) Send(ctx context.Context, in input.SendMessageInput) (models.RoomMessage, int, error) {
	if err := in.Validate(); err != nil {
		return models.RoomMessage{}, 0, err
	}

	now := uc.clock.Now()
	msg := models.RoomMessage{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:    in.UserID,
		Message:   in.Message,
		Timestamp: now,
	}

	log, err := mutateList(ctx, uc.store, keys.RoomMessages(in.RoomID), uc.ttl,
		func(list []models.RoomMessage) ([]models.RoomMessage, bool) {
			list = append(list, msg)
			if len(list) > uc.limit {
				list = list[len(list)-uc.limit:]
			}
			return list, true
		},
	)
	if err != nil {
		return models.RoomMessage{}, 0, fmt.Errorf("append message: %w", err)
	}

	return msg, len(log), nil
}

func (uc *messageUsecase) List(ctx context.Context, roomID string) ([]models.RoomMessage, error) {
	raw, err := uc.store.Get(ctx, keys.RoomMessages(roomID))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	var log []models.RoomMessage
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}

	return log, nil
}
