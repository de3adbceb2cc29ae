package models

import "time"

// RoomMessage - запись в журнале сообщений комнаты.
type RoomMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
