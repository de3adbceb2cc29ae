package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/domain/events"
	"github.com/qrave1/RoomSignal/internal/infra/adapters/sseclient"
)

var listenFlags struct {
	room        string
	user        string
	body        string
	retryDelay  time.Duration
	maxRetries  uint64
	exponential bool
	maxDelay    time.Duration
	horizon     time.Duration
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Subscribe to a room stream (or the global stream) and print events",
	Long: `Opens a server-sent event stream and prints every event as a JSON line.
With --room the room stream is used, otherwise the global one. With --body the
global stream is opened with POST and the body is echoed back in every event.
The connection is re-established on errors and when the stream stays silent
longer than --stall-horizon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger := clientLogger()

		opts, err := listenOptions(logger)
		if err != nil {
			return err
		}

		consumer, err := sseclient.NewConsumer(opts)
		if err != nil {
			return err
		}
		defer consumer.Close()

		watchdog := sseclient.NewWatchdog(consumer, listenFlags.horizon, nil)
		defer watchdog.Stop()

		out := json.NewEncoder(cmd.OutOrStdout())

		consumer.OnOpen(func(sseclient.Event) {
			logger.Info("stream opened", slog.String(constant.URL, opts.URL))
		})
		consumer.OnError(func(ev sseclient.Event) {
			logger.Warn("stream error", slog.Any(constant.Error, ev.Err))
		})
		consumer.On(events.Connected, func(ev sseclient.Event) {
			var hello events.ConnectedEvent
			if err := ev.Decode(&hello); err != nil {
				logger.Warn("malformed connected event", slog.Any(constant.Error, err))
				return
			}

			logger.Info(
				"subscribed",
				slog.String(constant.RoomID, hello.RoomID),
				slog.String(constant.UserID, hello.UserID),
			)
		})
		consumer.OnAny(func(ev sseclient.Event) {
			if err := out.Encode(map[string]any{"event": ev.Name, "data": ev.Data}); err != nil {
				logger.Error("write event", slog.String(constant.Event, ev.Name), slog.Any(constant.Error, err))
			}
		})

		if err := consumer.Connect(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-consumer.Done():
			return sseclient.ErrRetriesExhausted
		}
	},
}

func listenOptions(logger *slog.Logger) (sseclient.Options, error) {
	opts := sseclient.Options{
		Method: http.MethodGet,
		Retry: sseclient.RetryPolicy{
			Delay:       listenFlags.retryDelay,
			MaxAttempts: listenFlags.maxRetries,
			Exponential: listenFlags.exponential,
			MaxDelay:    listenFlags.maxDelay,
		},
		Logger: logger,
	}

	if listenFlags.room != "" {
		target, err := url.JoinPath(serverURL, "server-sent-event", "room", listenFlags.room)
		if err != nil {
			return opts, fmt.Errorf("build url: %w", err)
		}
		if listenFlags.user == "" {
			listenFlags.user = uuid.NewString()
		}
		target += "?" + url.Values{"userId": {listenFlags.user}}.Encode()
		opts.URL = target

		return opts, nil
	}

	target, err := url.JoinPath(serverURL, "server-sent-event")
	if err != nil {
		return opts, fmt.Errorf("build url: %w", err)
	}
	opts.URL = target

	if listenFlags.body != "" {
		var body json.RawMessage
		if err := json.Unmarshal([]byte(listenFlags.body), &body); err != nil {
			return opts, fmt.Errorf("--body must be valid JSON: %w", err)
		}

		opts.Method = http.MethodPost
		opts.Body = body
	}

	return opts, nil
}

// clientLogger - текстовый логгер в stderr для клиентских команд,
// stdout остается под вывод данных.
func clientLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func init() {
	addClientFlags(listenCmd)

	flags := listenCmd.Flags()
	flags.StringVarP(&listenFlags.room, "room", "r", "", "room id; empty means the global stream")
	flags.StringVarP(&listenFlags.user, "user", "u", "", "user id sent with the room stream (random UUID if empty)")
	flags.StringVar(&listenFlags.body, "body", "", "JSON body for the global stream (switches to POST)")
	flags.DurationVar(&listenFlags.retryDelay, "retry-delay", sseclient.DefaultRetryDelay, "delay before reconnecting")
	flags.Uint64Var(&listenFlags.maxRetries, "max-retries", 0, "give up after this many consecutive failures (0 = never)")
	flags.BoolVar(&listenFlags.exponential, "exponential", false, "double the delay after every failure")
	flags.DurationVar(&listenFlags.maxDelay, "max-delay", 0, "upper bound for the reconnect delay (0 = none)")
	flags.DurationVar(&listenFlags.horizon, "stall-horizon", sseclient.DefaultStallHorizon, "force a reconnect after this much silence")

	rootCmd.AddCommand(listenCmd)
}

