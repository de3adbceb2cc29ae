package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/RoomSignal/internal/application/clock"
	"github.com/qrave1/RoomSignal/internal/application/config"
	"github.com/qrave1/RoomSignal/internal/application/constant"
	"github.com/qrave1/RoomSignal/internal/application/metric"
	"github.com/qrave1/RoomSignal/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomSignal/internal/infra/ports/http/server"
	"github.com/qrave1/RoomSignal/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)

	slog.Info(
		"Running app",
		slog.Bool("debug", cfg.Debug),
		slog.String("store", cfg.Store.Driver),
	)

	clk := clock.Real()

	store, closeStore, err := openStore(ctx, cfg, clk)
	if err != nil {
		slog.Error("open store", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer closeStore()

	go runSweeper(ctx, store, clk, cfg.Store.SweepInterval)

	roomUsecase := usecase.NewRoomUsecase(store, clk, cfg.Signaling.SignalTTL)
	mailboxUsecase := usecase.NewMailboxUsecase(store, clk, cfg.Signaling.SignalTTL)
	messageUsecase := usecase.NewMessageUsecase(store, clk, cfg.Signaling.MessageTTL, cfg.Signaling.MessageLogLimit)
	streamUsecase := usecase.NewStreamUsecase(messageUsecase, clk, cfg.Stream.Interval)

	signalingHandler := handlers.NewSignalingHandler(roomUsecase, mailboxUsecase)
	streamHandler := handlers.NewStreamHandler(streamUsecase, messageUsecase)
	iceHandler := handlers.NewIceHandler(cfg, clk)
	wsHandler := handlers.NewWebSocketHandler(cfg, mailboxUsecase, clk)

	echoSrv := server.New(ctx, cfg, signalingHandler, streamHandler, iceHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	// Запускаем HTTP сервер
	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	// Запускаем сервер метрик
	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	slog.Info("Listening", slog.String("port", cfg.Port), slog.String("metric_port", cfg.MetricPort))

	// Ожидаем сигнал завершения или ошибку сервера
	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	// Graceful shutdown. ctx уже отменен, поэтому открытые потоки завершаются сами
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
