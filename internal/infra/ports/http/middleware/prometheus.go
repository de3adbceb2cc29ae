package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomSignal/internal/application/metric"
)

// PrometheusMiddleware собирает метрики HTTP запросов. Для SSE и WS
// длительность равна времени жизни потока.
func PrometheusMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			statusCode := c.Response().Status
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			if err != nil && statusCode < http.StatusBadRequest {
				statusCode = http.StatusInternalServerError
			}

			// c.Path() - шаблон маршрута, без подстановки roomId
			metric.RecordHTTPMetrics(c.Request().Method, c.Path(), statusCode, time.Since(start))

			return err
		}
	}
}
