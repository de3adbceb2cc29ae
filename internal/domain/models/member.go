package models

import "time"

const (
	RoleInitiator = "initiator"
	RoleResponder = "responder"
)

// Member - участник комнаты. Первый вошедший становится инициатором (offer),
// все последующие - отвечающими (answer).
type Member struct {
	RoomID      string    `json:"roomId"`
	UserID      string    `json:"userId"`
	IsInitiator bool      `json:"isInitiator"`
	IsResponder bool      `json:"isResponder"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func NewMember(roomID, userID string, isInitiator bool, now time.Time) Member {
	return Member{
		RoomID:      roomID,
		UserID:      userID,
		IsInitiator: isInitiator,
		IsResponder: !isInitiator,
		JoinedAt:    now,
	}
}

func (m Member) Role() string {
	if m.IsInitiator {
		return RoleInitiator
	}

	return RoleResponder
}
