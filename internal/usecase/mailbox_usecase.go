package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/domain/keys"
	"github.com/qrave1/RoomSignal/internal/domain/models"
	"github.com/qrave1/RoomSignal/internal/domain/ports"
)

type MailboxUsecase interface {
	PublishDescription(ctx context.Context, in input.PublishDescriptionInput) error
	PublishCandidates(ctx context.Context, in input.PublishCandidatesInput) error

	// Fetch отдает все опубликованное в комнате, чтобы вторая сторона
	// могла забрать данные собеседника.
	Fetch(ctx context.Context, roomID string) (models.Mailbox, error)
}

type mailboxUsecase struct {
	store ports.TTLStore
	clock clock.Clock
	ttl   time.Duration
}

func NewMailboxUsecase(store ports.TTLStore, clk clock.Clock, ttl time.Duration) MailboxUsecase {
	return &mailboxUsecase{store: store, clock: clk, ttl: ttl}
}

func (uc *mailboxUsecase) PublishDescription(ctx context.Context, in input.PublishDescriptionInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	entry := models.SessionDescription{
		RoomID:      in.RoomID,
		UserID:      in.UserID,
		Description: in.Description,
		UpdatedAt:   uc.clock.Now(),
	}

	_, err := mutateList(ctx, uc.store, keys.RoomDescriptions(in.RoomID), uc.ttl,
		func(list []models.SessionDescription) ([]models.SessionDescription, bool) {
			return upsertByUser(list, entry, func(d models.SessionDescription) string { return d.UserID }), true
		},
	)
	if err != nil {
		return fmt.Errorf("publish description: %w", err)
	}

	return nil
}

func (uc *mailboxUsecase) PublishCandidates(ctx context.Context, in input.PublishCandidatesInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	entry := models.CandidateBatch{
		RoomID:     in.RoomID,
		UserID:     in.UserID,
		Candidates: in.Candidates,
		UpdatedAt:  uc.clock.Now(),
	}

	_, err := mutateList(ctx, uc.store, keys.RoomCandidates(in.RoomID), uc.ttl,
		func(list []models.CandidateBatch) ([]models.CandidateBatch, bool) {
			return upsertByUser(list, entry, func(b models.CandidateBatch) string { return b.UserID }), true
		},
	)
	if err != nil {
		return fmt.Errorf("publish candidates: %w", err)
	}

	return nil
}

func (uc *mailboxUsecase) Fetch(ctx context.Context, roomID string) (models.Mailbox, error) {
	mailbox := models.Mailbox{
		RoomID:       roomID,
		Members:      []models.Member{},
		Descriptions: []models.SessionDescription{},
		Candidates:   []models.CandidateBatch{},
	}

	if _, members, err := readList[models.Member](ctx, uc.store, keys.RoomMembers(roomID)); err != nil {
		return models.Mailbox{}, fmt.Errorf("read members: %w", err)
	} else if members != nil {
		mailbox.Members = members
	}

	if _, descriptions, err := readList[models.SessionDescription](ctx, uc.store, keys.RoomDescriptions(roomID)); err != nil {
		return models.Mailbox{}, fmt.Errorf("read descriptions: %w", err)
	} else if descriptions != nil {
		mailbox.Descriptions = descriptions
	}

	if _, candidates, err := readList[models.CandidateBatch](ctx, uc.store, keys.RoomCandidates(roomID)); err != nil {
		return models.Mailbox{}, fmt.Errorf("read candidates: %w", err)
	} else if candidates != nil {
		mailbox.Candidates = candidates
	}

	return mailbox, nil
}

// upsertByUser заменяет запись того же пользователя на месте или добавляет в конец.
func upsertByUser[T any](list []T, entry T, userID func(T) string) []T {
	id := userID(entry)

	for i := range list {
		if userID(list[i]) == id {
			list[i] = entry
			return list
		}
	}

	return append(list, entry)
}
