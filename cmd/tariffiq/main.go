package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"

	"github.com/tariffiq/tariffiq/pkg/coordinator"
	"github.com/tariffiq/tariffiq/pkg/dso"
	"github.com/tariffiq/tariffiq/pkg/log"
	"github.com/tariffiq/tariffiq/pkg/sensor"
	"github.com/tariffiq/tariffiq/pkg/statistics"
)

func main() {
	// optional local overrides, flags still win
	_ = godotenv.Load()

	// init packages
	reg := dso.Configured()
	stats := statistics.Configured()
	values := sensor.NewValues()
	mq := sensor.Configured(values)
	coord := coordinator.Configured(reg, stats, values, mq)

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := stats.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close statistics provider", "error", err)
		}
	}()

	settings := coord.Settings()
	mq.Subscribe(settings.EnergySensor, "tariffiq/sensor/"+settings.EnergySensor)
	mq.Subscribe(settings.PowerSensor, "tariffiq/sensor/"+settings.PowerSensor)
	if err := mq.Connect(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to connect to MQTT broker", "error", err)
		os.Exit(1)
	}
	defer mq.Close()

	// Run blocks until the context is canceled or an error happens
	if err := coord.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Ctx(ctx).ErrorContext(ctx, "coordinator failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "coordinator exited cleanly")
}
