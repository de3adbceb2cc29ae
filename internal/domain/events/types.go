package events

import (
	"encoding/json"
	"time"
)

// Имена событий в SSE потоке
const (
	Connected = "connected"
	Message   = "message"
	Heartbeat = "heartbeat"
	Ping      = "ping"
)

// ConnectedEvent - первое событие любого потока
type ConnectedEvent struct {
	Message   string    `json:"message"`
	RoomID    string    `json:"roomId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TickEvent - периодическое событие глобального потока. Body повторяет тело POST запроса.
type TickEvent struct {
	Timestamp time.Time       `json:"timestamp"`
	Body      json.RawMessage `json:"body,omitempty"`
}

// HeartbeatEvent держит соединение живым через прокси
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// MailboxEvent - сообщение WebSocket канала комнаты
type MailboxEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
