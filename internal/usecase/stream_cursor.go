package usecase

import "github.com/qrave1/RoomSignal/internal/domain/models"

// RoomCursor помнит, что уже отправлено в конкретное SSE соединение.
// Принадлежит одному соединению, не разделяется между горутинами.
type RoomCursor struct {
	forwarded int
	lastID    string
}

// Forwarded - сколько сообщений отправлено за время жизни соединения.
func (c *RoomCursor) Forwarded() int {
	return c.forwarded
}

// Advance возвращает сообщения журнала, которые еще не отправлялись, и
// сдвигает курсор за них. Порядок сохраняется.
func (c *RoomCursor) Advance(log []models.RoomMessage) []models.RoomMessage {
	fresh := log[c.start(log):]
	if len(fresh) == 0 {
		return nil
	}

	c.forwarded += len(fresh)
	c.lastID = fresh[len(fresh)-1].ID

	return fresh
}

func (c *RoomCursor) start(log []models.RoomMessage) int {
	if c.lastID == "" {
		return min(c.forwarded, len(log))
	}

	for i := len(log) - 1; i >= 0; i-- {
		if log[i].ID == c.lastID {
			return i + 1
		}
	}

	// Последнее отправленное сообщение вытеснено лимитом журнала или журнал
	// истек. ULID сортируются по времени, отдаем все, что новее.
	for i, msg := range log {
		if msg.ID > c.lastID {
			return i
		}
	}

	return len(log)
}
