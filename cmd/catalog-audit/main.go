// Package main содержит точку входа воркера аудита событий каталога.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/product-catalog/internal/app/audit"
	"github.com/magabrotheeeer/product-catalog/internal/config"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env)

	logger.Info("starting catalog-audit", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := audit.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize audit app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("audit app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("catalog-audit stopped gracefully")
}
