package dto

import (
	"encoding/json"

	"github.com/qrave1/RoomSignal/internal/domain/models"
)

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type JoinRoomResponse struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsOffer  bool   `json:"isOffer"`
	IsAnswer bool   `json:"isAnswer"`
}

func NewJoinRoomResponseFromModel(m models.Member) JoinRoomResponse {
	return JoinRoomResponse{
		RoomID:   m.RoomID,
		UserID:   m.UserID,
		IsOffer:  m.IsInitiator,
		IsAnswer: m.IsResponder,
	}
}

type DescriptionRequest struct {
	RoomID      string          `json:"roomId"`
	UserID      string          `json:"userId"`
	Description json.RawMessage `json:"description"`
}

type CandidateListRequest struct {
	RoomID        string            `json:"roomId"`
	UserID        string            `json:"userId"`
	CandidateList []json.RawMessage `json:"candidateList"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type CreateRoomResponse struct {
	RoomID string `json:"roomId"`
}
