package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/config"
	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/domain/events"
	"github.com/qrave1/RoomSignal/internal/usecase"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second

	mailboxEventType = "mailbox"
	pongEventType    = "pong"
)

// WebSocketHandler отдает клиенту почтовый ящик комнаты и присылает
// новый снимок каждый раз, когда он меняется.
type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	mailboxUsecase usecase.MailboxUsecase
	clock          clock.Clock
	pollInterval   time.Duration
}

func NewWebSocketHandler(
	cfg *config.Config,
	mailboxUsecase usecase.MailboxUsecase,
	clk clock.Clock,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		mailboxUsecase: mailboxUsecase,
		clock:          clk,
		pollInterval:   cfg.Stream.Interval,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	roomID := c.Param("roomId")

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.String(constant.RoomID, roomID),
			slog.Any(constant.Error, err),
		)
		return nil
	}
	defer ws.Close()

	metric.IncrementWSActiveConnections()
	defer metric.DecrementWSActiveConnections()

	if err = ws.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	ctx := c.Request().Context()

	// Читатель только продлевает дедлайн и отвечает на "ping".
	// Пишет в сокет одна горутина (ниже).
	pings := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Warn(
						"webSocket read error",
						slog.String(constant.RoomID, roomID),
						slog.Any(constant.Error, err),
					)
				}
				return
			}

			if string(bytes.TrimSpace(msg)) == events.Ping {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	pingTicker := h.clock.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	pollTicker := h.clock.NewTicker(h.pollInterval)
	defer pollTicker.Stop()

	var last []byte

	push := func() bool {
		mailbox, err := h.mailboxUsecase.Fetch(ctx, roomID)
		if err != nil {
			slog.Error("fetch mailbox", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))
			return true
		}

		snapshot, err := json.Marshal(mailbox)
		if err != nil {
			slog.Error("marshal mailbox", slog.String(constant.RoomID, roomID), slog.Any(constant.Error, err))
			return true
		}

		if bytes.Equal(snapshot, last) {
			return true
		}
		last = snapshot

		return h.write(ws, events.MailboxEvent{Type: mailboxEventType, Data: json.RawMessage(snapshot)})
	}

	if !push() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case <-pings:
			if !h.write(ws, events.MailboxEvent{Type: pongEventType}) {
				return nil
			}
		case <-pingTicker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Error("ping failed", slog.Any(constant.Error, err))
				return nil
			}
		case <-pollTicker.C:
			if !push() {
				return nil
			}
		}
	}
}

func (h *WebSocketHandler) write(ws *websocket.Conn, msg events.MailboxEvent) bool {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))

	if err := ws.WriteJSON(msg); err != nil {
		slog.Error("webSocket write error", slog.Any(constant.Error, err))
		return false
	}

	return true
}
