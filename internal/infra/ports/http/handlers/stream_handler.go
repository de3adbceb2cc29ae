package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/domain/input"
	"github.com/qrave1/RoomSignal/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomSignal/internal/usecase"
)

// maxEchoBody - ограничение на тело POST запроса глобального потока
const maxEchoBody = 64 * 1024

type StreamHandler struct {
	streamUsecase  usecase.StreamUsecase
	messageUsecase usecase.MessageUsecase
}

func NewStreamHandler(streamUsecase usecase.StreamUsecase, messageUsecase usecase.MessageUsecase) *StreamHandler {
	return &StreamHandler{streamUsecase: streamUsecase, messageUsecase: messageUsecase}
}

// Global обслуживает GET и POST /server-sent-event. Для POST тело
// повторяется в каждом событии.
func (h *StreamHandler) Global(c echo.Context) error {
	var body json.RawMessage

	if c.Request().Method == http.MethodPost {
		raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEchoBody))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		body = echoBody(raw)
	}

	metric.IncrementActiveStreams(metric.StreamGlobal)
	defer metric.DecrementActiveStreams(metric.StreamGlobal)

	sink := openEventStream(c)

	if err := h.streamUsecase.StreamGlobal(c.Request().Context(), sink, body); err != nil {
		slog.Warn("global stream closed", slog.Any(constant.Error, err))
	}

	return nil
}

func (h *StreamHandler) Room(c echo.Context) error {
	roomID := c.Param("roomId")
	userID := c.QueryParam("userId")

	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "roomId is required"})
	}

	metric.IncrementActiveStreams(metric.StreamRoom)
	defer metric.DecrementActiveStreams(metric.StreamRoom)

	slog.Info("room stream opened", slog.String(constant.RoomID, roomID), slog.String(constant.UserID, userID))

	sink := openEventStream(c)

	if err := h.streamUsecase.StreamRoom(c.Request().Context(), sink, roomID, userID); err != nil {
		slog.Warn(
			"room stream closed",
			slog.String(constant.RoomID, roomID),
			slog.String(constant.UserID, userID),
			slog.Any(constant.Error, err),
		)
	}

	slog.Info("room stream finished", slog.String(constant.RoomID, roomID), slog.String(constant.UserID, userID))

	return nil
}

func (h *StreamHandler) SendMessage(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	msg, total, err := h.messageUsecase.Send(c.Request().Context(), input.SendMessageInput{
		RoomID:  c.Param("roomId"),
		UserID:  req.UserID,
		Message: req.Message,
	})
	if err != nil {
		return respondError(c, "send message", err)
	}

	return c.JSON(http.StatusOK, dto.SendMessageResponse{
		Success:       true,
		Message:       msg,
		TotalMessages: total,
	})
}

// echoBody возвращает тело как JSON. Не-JSON тело оборачивается в строку.
func echoBody(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	if json.Valid(raw) {
		return json.RawMessage(raw)
	}

	quoted, _ := json.Marshal(string(raw))

	return json.RawMessage(quoted)
}
