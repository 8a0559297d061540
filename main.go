package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jsonadaptor/internal/app"
	"jsonadaptor/internal/config"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("invalid configuration", slog.Any("err", err))
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(cfg, logger)
	if err := a.Startup(ctx); err != nil {
		logger.Error("startup failed", slog.Any("err", err))
		os.Exit(1)
	}

	runErr := a.Run(ctx)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	a.Shutdown(shutdownCtx)

	if runErr != nil {
		logger.Error("import failed", slog.Any("err", runErr))
		os.Exit(1)
	}
}
