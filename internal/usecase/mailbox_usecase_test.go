package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/domain/keys"
	"github.com/qrave1/RoomSignal/internal/domain/models"
)

func TestPublishDescriptionUpsert(t *testing.T) {
	store, clk := newTestStore(t)
	uc := NewMailboxUsecase(store, clk, 10*time.Minute)
	ctx := context.Background()

	publish := func(user, payload string) {
		t.Helper()
		err := uc.PublishDescription(ctx, input.PublishDescriptionInput{
			RoomID:      "r1",
			UserID:      user,
			Description: json.RawMessage(payload),
		})
		if err != nil {
			t.Fatalf("PublishDescription(%s): %v", user, err)
		}
	}

	publish("a", `{"type":"offer","sdp":"first"}`)
	publish("b", `{"type":"answer","sdp":"B"}`)
	publish("a", `{"type":"offer","sdp":"second"}`)

	mailbox, err := uc.Fetch(ctx, "r1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(mailbox.Descriptions) != 2 {
		t.Fatalf("len(descriptions) = %d, want 2", len(mailbox.Descriptions))
	}

	first := mailbox.Descriptions[0]
	if first.UserID != "a" {
		t.Fatalf("descriptions[0].UserID = %q, want a (replaced in place)", first.UserID)
	}
	if string(first.Description) != `{"type":"offer","sdp":"second"}` {
		t.Fatalf("descriptions[0].Description = %s, want second payload", first.Description)
	}

	desc, err := first.WebRTC()
	if err != nil {
		t.Fatalf("WebRTC: %v", err)
	}
	if desc.SDP != "second" {
		t.Fatalf("SDP = %q, want second", desc.SDP)
	}
}

func TestPublishCandidatesReplacesWholeList(t *testing.T) {
	store, clk := newTestStore(t)
	uc := NewMailboxUsecase(store, clk, 10*time.Minute)
	ctx := context.Background()

	batch := func(candidates ...string) []json.RawMessage {
		out := make([]json.RawMessage, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, json.RawMessage(`{"candidate":"`+c+`","sdpMid":"0"}`))
		}
		return out
	}

	if err := uc.PublishCandidates(ctx, input.PublishCandidatesInput{RoomID: "r1", UserID: "a", Candidates: batch("c1", "c2")}); err != nil {
		t.Fatalf("PublishCandidates: %v", err)
	}
	if err := uc.PublishCandidates(ctx, input.PublishCandidatesInput{RoomID: "r1", UserID: "a", Candidates: batch("c3")}); err != nil {
		t.Fatalf("PublishCandidates: %v", err)
	}

	mailbox, err := uc.Fetch(ctx, "r1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(mailbox.Candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(mailbox.Candidates))
	}

	candidates, err := mailbox.Candidates[0].WebRTC()
	if err != nil {
		t.Fatalf("WebRTC: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Candidate != "c3" {
		t.Fatalf("candidates = %+v, want only c3", candidates)
	}
}

func TestPublishValidationBeforeStore(t *testing.T) {
	store, clk := newTestStore(t)
	uc := NewMailboxUsecase(store, clk, 10*time.Minute)
	ctx := context.Background()

	err := uc.PublishDescription(ctx, input.PublishDescriptionInput{RoomID: "r1", UserID: "a", Description: json.RawMessage(`null`)})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("PublishDescription(null) = %v, want ErrInvalidInput", err)
	}

	err = uc.PublishCandidates(ctx, input.PublishCandidatesInput{RoomID: "r1", UserID: "a"})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("PublishCandidates(empty) = %v, want ErrInvalidInput", err)
	}

	if store.Writes() != 0 {
		t.Fatalf("validation failures wrote %d times", store.Writes())
	}
}

func TestFetchEmptyRoom(t *testing.T) {
	store, clk := newTestStore(t)
	uc := NewMailboxUsecase(store, clk, 10*time.Minute)

	mailbox, err := uc.Fetch(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if mailbox.Members == nil || mailbox.Descriptions == nil || mailbox.Candidates == nil {
		t.Fatal("Fetch of empty room returned nil lists")
	}
}

func TestPublishOverwritesMalformedList(t *testing.T) {
	store, clk := newTestStore(t)
	uc := NewMailboxUsecase(store, clk, 10*time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, keys.RoomDescriptions("r1"), []byte("{broken"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	err := uc.PublishDescription(ctx, input.PublishDescriptionInput{RoomID: "r1", UserID: "a", Description: json.RawMessage(`{"sdp":"X"}`)})
	if err != nil {
		t.Fatalf("PublishDescription: %v", err)
	}

	mailbox, err := uc.Fetch(ctx, "r1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(mailbox.Descriptions) != 1 {
		t.Fatalf("len(descriptions) = %d, want 1", len(mailbox.Descriptions))
	}
}

// Сценарий из двух участников: роли, описание и чтение второй стороной.
func TestSignalingScenario(t *testing.T) {
	store, clk := newTestStore(t)
	rooms := NewRoomUsecase(store, clk, 10*time.Minute)
	mailboxes := NewMailboxUsecase(store, clk, 10*time.Minute)
	ctx := context.Background()

	a, err := rooms.Join(ctx, input.JoinRoomInput{RoomID: "r1", UserID: "a"})
	if err != nil {
		t.Fatalf("Join(a): %v", err)
	}
	b, err := rooms.Join(ctx, input.JoinRoomInput{RoomID: "r1", UserID: "b"})
	if err != nil {
		t.Fatalf("Join(b): %v", err)
	}

	if !a.IsInitiator || a.IsResponder {
		t.Fatalf("a = %+v, want initiator", a)
	}
	if b.IsInitiator || !b.IsResponder {
		t.Fatalf("b = %+v, want responder", b)
	}

	offer := json.RawMessage(`{"type":"offer","sdp":"X"}`)
	if err := mailboxes.PublishDescription(ctx, input.PublishDescriptionInput{RoomID: "r1", UserID: "a", Description: offer}); err != nil {
		t.Fatalf("PublishDescription: %v", err)
	}

	mailbox, err := mailboxes.Fetch(ctx, "r1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(mailbox.Members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(mailbox.Members))
	}
	if len(mailbox.Descriptions) != 1 {
		t.Fatalf("len(descriptions) = %d, want 1", len(mailbox.Descriptions))
	}
	if got := mailbox.Descriptions[0]; got.UserID != "a" || string(got.Description) != string(offer) {
		t.Fatalf("description = %+v, want a's offer", got)
	}
}
