package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomSignal/internal/usecase"
)

type SignalingHandler struct {
	roomUsecase    usecase.RoomUsecase
	mailboxUsecase usecase.MailboxUsecase
}

func NewSignalingHandler(roomUsecase usecase.RoomUsecase, mailboxUsecase usecase.MailboxUsecase) *SignalingHandler {
	return &SignalingHandler{roomUsecase: roomUsecase, mailboxUsecase: mailboxUsecase}
}

func (h *SignalingHandler) CreateRoom(c echo.Context) error {
	return c.JSON(http.StatusCreated, dto.CreateRoomResponse{RoomID: uuid.NewString()})
}

func (h *SignalingHandler) JoinRoom(c echo.Context) error {
	var req dto.JoinRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	member, err := h.roomUsecase.Join(c.Request().Context(), input.JoinRoomInput{
		RoomID: req.RoomID,
		UserID: req.UserID,
	})
	if err != nil {
		return respondError(c, "join room", err)
	}

	return c.JSON(http.StatusOK, dto.NewJoinRoomResponseFromModel(member))
}

func (h *SignalingHandler) PublishDescription(c echo.Context) error {
	var req dto.DescriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	err := h.mailboxUsecase.PublishDescription(c.Request().Context(), input.PublishDescriptionInput{
		RoomID:      req.RoomID,
		UserID:      req.UserID,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, "publish description", err)
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *SignalingHandler) PublishCandidates(c echo.Context) error {
	var req dto.CandidateListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	err := h.mailboxUsecase.PublishCandidates(c.Request().Context(), input.PublishCandidatesInput{
		RoomID:     req.RoomID,
		UserID:     req.UserID,
		Candidates: req.CandidateList,
	})
	if err != nil {
		return respondError(c, "publish candidates", err)
	}

	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *SignalingHandler) FetchRoom(c echo.Context) error {
	roomID := c.Param("roomId")
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "roomId is required"})
	}

	mailbox, err := h.mailboxUsecase.Fetch(c.Request().Context(), roomID)
	if err != nil {
		return respondError(c, "fetch room", err)
	}

	return c.JSON(http.StatusOK, mailbox)
}
