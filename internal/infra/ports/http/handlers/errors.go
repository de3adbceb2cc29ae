package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/domain/models"
)

// respondError переводит ошибку usecase в HTTP ответ. Ошибки валидации
// отдаются клиенту как есть, остальные только логируются.
func respondError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		slog.Warn(op, slog.Any(constant.Error, err))
		return c.JSON(http.StatusConflict, map[string]string{"error": "room is busy, retry"})
	default:
		slog.Error(op, slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to " + op})
	}
}
