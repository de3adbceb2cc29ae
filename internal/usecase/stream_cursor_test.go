package usecase

import (
	"fmt"
	"testing"

	"github.com/qrave1/RoomSignal/internal/domain/models"
)

func messageLog(from, to int) []models.RoomMessage {
	log := make([]models.RoomMessage, 0, to-from)
	for i := from; i < to; i++ {
		log = append(log, models.RoomMessage{ID: fmt.Sprintf("%08d", i), Message: fmt.Sprintf("m%d", i)})
	}
	return log
}

func TestRoomCursorEmitsOnlyNew(t *testing.T) {
	t.Parallel()

	cursor := &RoomCursor{}

	if got := cursor.Advance(messageLog(0, 3)); len(got) != 3 {
		t.Fatalf("first Advance emitted %d, want 3", len(got))
	}

	got := cursor.Advance(messageLog(0, 7))
	if len(got) != 4 {
		t.Fatalf("Advance emitted %d, want 4", len(got))
	}
	for i, msg := range got {
		if want := fmt.Sprintf("m%d", i+3); msg.Message != want {
			t.Fatalf("emitted[%d] = %q, want %q", i, msg.Message, want)
		}
	}
	if cursor.Forwarded() != 7 {
		t.Fatalf("Forwarded() = %d, want 7", cursor.Forwarded())
	}

	if got := cursor.Advance(messageLog(0, 7)); len(got) != 0 {
		t.Fatalf("unchanged log emitted %d", len(got))
	}
}

func TestRoomCursorEmptyTickKeepsPosition(t *testing.T) {
	t.Parallel()

	cursor := &RoomCursor{}
	cursor.Advance(messageLog(0, 5))

	if got := cursor.Advance(nil); len(got) != 0 {
		t.Fatalf("nil log emitted %d", len(got))
	}

	if got := cursor.Advance(messageLog(0, 6)); len(got) != 1 {
		t.Fatalf("Advance after failed tick emitted %d, want 1", len(got))
	}
}

func TestRoomCursorRotatedLog(t *testing.T) {
	t.Parallel()

	cursor := &RoomCursor{}
	cursor.Advance(messageLog(0, 100))

	// Лимит журнала вытеснил 5 старых записей
	got := cursor.Advance(messageLog(5, 105))
	if len(got) != 5 {
		t.Fatalf("Advance on rotated log emitted %d, want 5", len(got))
	}
	if got[0].Message != "m100" {
		t.Fatalf("first emitted = %q, want m100", got[0].Message)
	}

	// Журнал истек и начался заново, последнее отправленное вытеснено целиком
	got = cursor.Advance(messageLog(200, 202))
	if len(got) != 2 {
		t.Fatalf("Advance on restarted log emitted %d, want 2", len(got))
	}
	if cursor.Forwarded() != 107 {
		t.Fatalf("Forwarded() = %d, want 107", cursor.Forwarded())
	}
}
