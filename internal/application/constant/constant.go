package constant

// Ключи атрибутов для slog
const (
	Error  = "error"
	RoomID = "room_id"
	UserID = "user_id"
	Event  = "event"
	URL    = "url"
	Method = "method"
	Delay  = "delay"
)
