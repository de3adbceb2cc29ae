package sseclient

import (
	"log/slog"
	"sync"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/metric"
)

const DefaultStallHorizon = 10 * time.Second

// Supervised - то, за чем может следить Watchdog. *Consumer подходит.
type Supervised interface {
	OnOpen(h Handler)
	OnAny(h Handler)
	Reconnect()
}

// Watchdog переподключает поток, который не падает, но и ничего не
// присылает дольше horizon. Любой кадр, включая heartbeat, считается
// признаком жизни. Создается непосредственно перед Connect.
type Watchdog struct {
	target  Supervised
	clock   clock.Clock
	horizon time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	last    time.Time
	timer   *clock.Timer
	stopped bool
}

func NewWatchdog(target Supervised, horizon time.Duration, clk clock.Clock) *Watchdog {
	if horizon <= 0 {
		horizon = DefaultStallHorizon
	}
	if clk == nil {
		clk = clock.Real()
	}

	w := &Watchdog{
		target:  target,
		clock:   clk,
		horizon: horizon,
		logger:  slog.Default(),
	}

	target.OnOpen(func(Event) { w.touch() })
	target.OnAny(func(Event) { w.touch() })

	// Отсчет идет с создания: первое подключение, зависшее до заголовков
	// ответа, тоже считается молчанием.
	w.touch()

	return w
}

// LastSeen - время последнего open или кадра.
func (w *Watchdog) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Stop снимает таймер. Остановленный Watchdog больше не срабатывает.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watchdog) touch() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	w.last = w.clock.Now()
	w.armLocked()
}

func (w *Watchdog) armLocked() {
	if w.timer == nil {
		w.timer = w.clock.AfterFunc(w.horizon, w.check)
		return
	}

	w.timer.Reset(w.horizon)
}

func (w *Watchdog) check() {
	w.mu.Lock()

	if w.stopped {
		w.mu.Unlock()
		return
	}

	now := w.clock.Now()
	silence := now.Sub(w.last)
	stalled := silence >= w.horizon

	// следующая проверка считается от момента принудительного
	// переподключения, иначе одна пауза дала бы серию переподключений
	if stalled {
		w.last = now
	}
	w.armLocked()
	w.mu.Unlock()

	if !stalled {
		return
	}

	w.logger.Warn("stream is silent, forcing reconnect", slog.Duration("silence", silence))
	metric.RecordStreamReconnect(metric.ReconnectWatchdog)

	w.target.Reconnect()
}
