package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StreamGlobal = "global"
	StreamRoom   = "room"

	ReconnectError    = "error"
	ReconnectWatchdog = "watchdog"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// SSE метрики - количество открытых потоков
	sseActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sse_active_streams",
			Help: "Количество открытых SSE потоков",
		},
		[]string{"kind"},
	)

	// SSE метрики - количество отправленных кадров
	sseFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_frames_sent_total",
			Help: "Количество отправленных SSE кадров",
		},
		[]string{"event"},
	)

	signalingJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signaling_joins_total",
			Help: "Количество новых участников комнат по ролям",
		},
		[]string{"role"},
	)

	// Количество конфликтов условной записи в TTL хранилище
	storeConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_cas_conflicts_total",
			Help: "Количество конфликтов compare-and-swap в TTL хранилище",
		},
	)

	// Клиент потока - переподключения по причине (error, watchdog)
	streamReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_client_reconnects_total",
			Help: "Количество переподключений клиента SSE",
		},
		[]string{"reason"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementActiveStreams(kind string) {
	sseActiveStreams.WithLabelValues(kind).Inc()
}

func DecrementActiveStreams(kind string) {
	sseActiveStreams.WithLabelValues(kind).Dec()
}

func RecordFrameSent(event string) {
	sseFramesTotal.WithLabelValues(event).Inc()
}

func RecordJoin(role string) {
	signalingJoinsTotal.WithLabelValues(role).Inc()
}

func RecordStoreConflict() {
	storeConflictsTotal.Inc()
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func RecordStreamReconnect(reason string) {
	streamReconnectsTotal.WithLabelValues(reason).Inc()
}
