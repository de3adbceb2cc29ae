package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/domain/keys"
	"github.com/qrave1/RoomSignal/internal/domain/models"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

type RoomUsecase interface {
	// Join добавляет участника в комнату и назначает ему роль. Повторный
	// вход того же userID возвращает существующего участника без записи.
	Join(ctx context.Context, in input.JoinRoomInput) (models.Member, error)
}

type roomUsecase struct {
	store ports.TTLStore
	clock clock.Clock
	ttl   time.Duration
}

func NewRoomUsecase(store ports.TTLStore, clk clock.Clock, ttl time.Duration) RoomUsecase {
	return &roomUsecase{store: store, clock: clk, ttl: ttl}
}

func (uc *roomUsecase) Join(ctx context.Context, in input.JoinRoomInput) (models.Member, error) {
	if err := in.Validate(); err != nil {
		return models.Member{}, err
	}

	var (
		member  models.Member
		created bool
	)

	// Роль считается от списка, прочитанного в той же попытке, что и CAS.
	// Два одновременных первых входа не могут оба стать инициаторами:
	// второй получит конфликт, перечитает список и станет отвечающим.
	_, err := mutateList(ctx, uc.store, keys.RoomMembers(in.RoomID), uc.ttl,
		func(list []models.Member) ([]models.Member, bool) {
			for _, m := range list {
				if m.UserID == in.UserID {
					member, created = m, false
					return list, false
				}
			}

			member = models.NewMember(in.RoomID, in.UserID, len(list) == 0, uc.clock.Now())
			created = true

			return append(list, member), true
		},
	)
	if err != nil {
		return models.Member{}, fmt.Errorf("update members: %w", err)
	}

	if !created {
		return member, nil
	}

	data, err := json.Marshal(member)
	if err != nil {
		return models.Member{}, fmt.Errorf("marshal member: %w", err)
	}

	if err := uc.store.Set(ctx, keys.RoomMember(in.RoomID, in.UserID), data, uc.ttl); err != nil {
		return models.Member{}, fmt.Errorf("set member: %w", err)
	}

	metric.RecordJoin(member.Role())

	slog.Info(
		"member joined room",
		slog.String(constant.RoomID, in.RoomID),
		slog.String(constant.UserID, in.UserID),
		slog.String("role", member.Role()),
	)

	return member, nil
}
