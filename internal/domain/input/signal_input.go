package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qrave1/RoomSignal/internal/domain/models"
)

type JoinRoomInput struct {
	RoomID string
	UserID string
}

func (in JoinRoomInput) Validate() error {
	return validateIDs(in.RoomID, in.UserID)
}

type PublishDescriptionInput struct {
	RoomID      string
	UserID      string
	Description json.RawMessage
}

func (in PublishDescriptionInput) Validate() error {
	if err := validateIDs(in.RoomID, in.UserID); err != nil {
		return err
	}

	if !isJSONObject(in.Description) {
		return fmt.Errorf("%w: description must be an object", models.ErrInvalidInput)
	}

	return nil
}

type PublishCandidatesInput struct {
	RoomID     string
	UserID     string
	Candidates []json.RawMessage
}

func (in PublishCandidatesInput) Validate() error {
	if err := validateIDs(in.RoomID, in.UserID); err != nil {
		return err
	}

	if len(in.Candidates) == 0 {
		return fmt.Errorf("%w: candidateList must be a non-empty list", models.ErrInvalidInput)
	}

	return nil
}

type SendMessageInput struct {
	RoomID  string
	UserID  string
	Message string
}

func (in SendMessageInput) Validate() error {
	if err := validateIDs(in.RoomID, in.UserID); err != nil {
		return err
	}

	if strings.TrimSpace(in.Message) == "" {
		return fmt.Errorf("%w: message is required", models.ErrInvalidInput)
	}

	return nil
}

func validateIDs(roomID, userID string) error {
	if strings.TrimSpace(roomID) == "" {
		return fmt.Errorf("%w: roomId is required", models.ErrInvalidInput)
	}

	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", models.ErrInvalidInput)
	}

	return nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
