// Package sseclient - клиент SSE потока. В отличие от браузерного
// EventSource умеет POST с телом, сам переподключается по RetryPolicy
// и отличает намеренную отмену от ошибок транспорта.
package sseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sethvargo/go-retry"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/infra/sse"
)

var (
	ErrRetriesExhausted = errors.New("sseclient: retries exhausted")
	ErrStreamClosed     = errors.New("sseclient: stream closed by server")
	ErrClosed           = errors.New("sseclient: consumer closed")
)

const readBufferSize = 4096

// StatusError - ответ сервера не 2xx.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sseclient: unexpected status %d", e.Code)
}

type Options struct {
	URL    string
	Method string // GET по умолчанию

	// Body сериализуется в JSON один раз и отправляется при каждом
	// переподключении. Только для POST.
	Body any

	Header http.Header
	Client *http.Client
	Retry  RetryPolicy
	Clock  clock.Clock
	Logger *slog.Logger
}

type Consumer struct {
	opts Options
	body []byte

	mu         sync.Mutex
	handlers   map[string][]Handler
	onOpen     []Handler
	onError    []Handler
	onAny      []Handler
	started    bool
	closed     bool
	generation uint64
	cancel     context.CancelFunc
	timer      *clock.Timer
	backoff    retry.Backoff

	done     chan struct{}
	doneOnce sync.Once
}

func NewConsumer(opts Options) (*Consumer, error) {
	if opts.URL == "" {
		return nil, errors.New("sseclient: url is required")
	}

	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Consumer{
		opts:     opts,
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}

	if opts.Body != nil {
		body, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		c.body = body
	}

	return c, nil
}

// On регистрирует обработчик кадров с именем name.
func (c *Consumer) On(name string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[name] = append(c.handlers[name], h)
}

func (c *Consumer) OnMessage(h Handler) { c.On(sse.DefaultEvent, h) }

func (c *Consumer) OnOpen(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOpen = append(c.onOpen, h)
}

func (c *Consumer) OnError(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, h)
}

// OnAny получает каждый кадр независимо от имени. Синтетические open и
// error сюда не попадают.
func (c *Consumer) OnAny(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAny = append(c.onAny, h)
}

// Done закрывается после Close или когда попытки кончились.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

// Connect запускает первую попытку. Повторный вызов ничего не делает.
func (c *Consumer) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}

	c.started = true
	c.startLocked()

	return nil
}

// Reconnect обрывает текущую попытку (без события error) и сразу
// подключается заново.
func (c *Consumer) Reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.started = true
	c.startLocked()
}

// Close отменяет запрос и запланированное переподключение. Идемпотентен.
func (c *Consumer) Close() {
	c.mu.Lock()
	c.closed = true
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Consumer) startLocked() {
	c.generation++
	gen := c.generation

	if c.cancel != nil {
		c.cancel()
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go c.run(ctx, gen)
}

func (c *Consumer) run(ctx context.Context, gen uint64) {
	err := c.stream(ctx, gen)
	c.fail(gen, err)
}

func (c *Consumer) stream(ctx context.Context, gen uint64) error {
	var body io.Reader
	if c.body != nil && c.opts.Method != http.MethodGet {
		body = bytes.NewReader(c.body)
	}

	req, err := http.NewRequestWithContext(ctx, c.opts.Method, c.opts.URL, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	for name, values := range c.opts.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}

	c.mu.Lock()
	if gen == c.generation {
		c.backoff = nil
	}
	c.mu.Unlock()

	c.dispatch(gen, Event{Kind: KindOpen, Name: "open"})

	decoder := sse.NewDecoder()
	buf := make([]byte, readBufferSize)

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, frame := range decoder.Feed(buf[:n]) {
				c.dispatch(gen, frameEvent(frame))
			}

			if err := decoder.Err(); err != nil {
				return fmt.Errorf("decode stream: %w", err)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if frame, ok := decoder.Flush(); ok {
					c.dispatch(gen, frameEvent(frame))
				}
				return ErrStreamClosed
			}

			return fmt.Errorf("read stream: %w", err)
		}
	}
}

// fail планирует переподключение и только потом сообщает об ошибке, чтобы
// Close из обработчика error отменил уже заведенный таймер. Попытки,
// отмененные через Close или Reconnect, сюда приходят с устаревшим
// поколением и игнорируются.
func (c *Consumer) fail(gen uint64, cause error) {
	c.mu.Lock()

	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if c.backoff == nil {
		c.backoff = c.opts.Retry.backoff()
	}

	delay, stop := c.backoff.Next()
	if stop {
		c.closed = true
		c.generation++
		c.mu.Unlock()

		c.opts.Logger.Error(
			"stream retries exhausted",
			slog.String(constant.URL, c.opts.URL),
			slog.Any(constant.Error, cause),
		)

		c.emit(Event{Kind: KindError, Name: "error", Err: fmt.Errorf("%w: %w", ErrRetriesExhausted, cause)})
		c.doneOnce.Do(func() { close(c.done) })

		return
	}

	c.timer = c.opts.Clock.AfterFunc(delay, func() { c.retry(gen) })
	c.mu.Unlock()

	c.opts.Logger.Warn(
		"stream failed, reconnecting",
		slog.String(constant.URL, c.opts.URL),
		slog.String(constant.Method, c.opts.Method),
		slog.Duration(constant.Delay, delay),
		slog.Any(constant.Error, cause),
	)

	c.dispatch(gen, Event{Kind: KindError, Name: "error", Err: cause})
}

func (c *Consumer) retry(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		return
	}

	metric.RecordStreamReconnect(metric.ReconnectError)

	c.startLocked()
}

// dispatch доставляет событие, только если попытка gen еще актуальна.
func (c *Consumer) dispatch(gen uint64, ev Event) {
	c.mu.Lock()
	current := !c.closed && gen == c.generation
	c.mu.Unlock()

	if !current {
		return
	}

	c.emit(ev)
}

func (c *Consumer) emit(ev Event) {
	c.mu.Lock()
	var handlers []Handler
	switch ev.Kind {
	case KindOpen:
		handlers = append(handlers, c.onOpen...)
	case KindError:
		handlers = append(handlers, c.onError...)
	default:
		handlers = append(handlers, c.handlers[ev.Name]...)
		handlers = append(handlers, c.onAny...)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
