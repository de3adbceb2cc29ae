package dto

import "github.com/qrave1/RoomSignal/internal/domain/models"

type SendMessageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Success       bool               `json:"success"`
	Message       models.RoomMessage `json:"message"`
	TotalMessages int                `json:"totalMessages"`
}
