package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pion/webrtc/v4"
)

// SessionDescription - непрозрачное описание сессии (SDP) участника.
// На пару (roomID, userID) хранится не больше одного.
type SessionDescription struct {
	RoomID      string          `json:"roomId"`
	UserID      string          `json:"userId"`
	Description json.RawMessage `json:"description"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// WebRTC разбирает описание как webrtc.SessionDescription, для клиентов на pion.
func (d SessionDescription) WebRTC() (webrtc.SessionDescription, error) {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(d.Description, &desc); err != nil {
		return webrtc.SessionDescription{}, fmt.Errorf("unmarshal session description: %w", err)
	}

	return desc, nil
}

// CandidateBatch - пачка ICE кандидатов участника. Новая публикация
// заменяет весь список целиком.
type CandidateBatch struct {
	RoomID     string            `json:"roomId"`
	UserID     string            `json:"userId"`
	Candidates []json.RawMessage `json:"candidates"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// WebRTC разбирает кандидатов как webrtc.ICECandidateInit.
func (b CandidateBatch) WebRTC() ([]webrtc.ICECandidateInit, error) {
	candidates := make([]webrtc.ICECandidateInit, 0, len(b.Candidates))

	for i, raw := range b.Candidates {
		var candidate webrtc.ICECandidateInit
		if err := json.Unmarshal(raw, &candidate); err != nil {
			return nil, fmt.Errorf("unmarshal candidate %d: %w", i, err)
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// Mailbox - все, что участники опубликовали в комнату.
type Mailbox struct {
	RoomID       string               `json:"roomId"`
	Members      []Member             `json:"members"`
	Descriptions []SessionDescription `json:"descriptions"`
	Candidates   []CandidateBatch     `json:"candidates"`
}
