package server

import (
	"context"
	"net"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/qrave1/RoomSignal/internal/application/config"
	"github.com/qrave1/RoomSignal/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomSignal/internal/infra/ports/http/middleware"
)

// New собирает echo сервер. Контексты всех запросов наследуются от ctx:
// его отмена закрывает открытые SSE и WebSocket потоки, без этого
// Shutdown ждал бы их до таймаута.
func New(
	ctx context.Context,
	cfg *config.Config,
	signalingHandler *handlers.SignalingHandler,
	streamHandler *handlers.StreamHandler,
	iceHandler *handlers.IceHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	e.Use(echomw.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())
	e.Use(echomw.CORS())

	webRTC := e.Group("/web-rtc")
	{
		webRTC.POST("/join-room", signalingHandler.JoinRoom)
		webRTC.POST("/description", signalingHandler.PublishDescription)
		webRTC.POST("/candidate-list", signalingHandler.PublishCandidates)

		webRTC.POST("/room", signalingHandler.CreateRoom)
		webRTC.GET("/room/:roomId", signalingHandler.FetchRoom)
		webRTC.GET("/room/:roomId/ws", wsHandler.Handle)

		webRTC.GET("/ice", iceHandler.IceServers)
	}

	sse := e.Group("/server-sent-event")
	{
		sse.GET("", streamHandler.Global)
		sse.POST("", streamHandler.Global)

		sse.GET("/room/:roomId", streamHandler.Room)
		sse.POST("/room/:roomId/send", streamHandler.SendMessage)
	}

	return e
}
