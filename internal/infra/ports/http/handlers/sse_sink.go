package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/infra/sse"
)

// echoSink пишет SSE кадры прямо в тело ответа echo и сбрасывает буфер
// после каждого кадра.
type echoSink struct {
	resp *echo.Response
}

func openEventStream(c echo.Context) *echoSink {
	resp := c.Response()

	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	// nginx не должен буферизовать поток
	resp.Header().Set("X-Accel-Buffering", "no")

	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	return &echoSink{resp: resp}
}

func (s *echoSink) Send(event string, payload any) error {
	frame, err := sse.Encode(event, payload)
	if err != nil {
		return err
	}

	if _, err := s.resp.Write(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", event, err)
	}

	s.resp.Flush()

	metric.RecordFrameSent(event)

	return nil
}
