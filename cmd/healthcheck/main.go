// Package main содержит проверку состояния каталога через gRPC health-сервис.
// Код выхода 0: сервис обслуживает запросы, 1: нет. Подходит для HEALTHCHECK контейнера.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/product-catalog/internal/grpc/client"
	"github.com/magabrotheeeer/product-catalog/internal/grpc/server"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "gRPC health server address")
	timeout := flag.Duration("timeout", 3*time.Second, "check timeout")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	hc, err := client.NewHealthClient(*addr)
	if err != nil {
		logger.Error("failed to create health client", sl.Err(err))
		os.Exit(1)
	}
	defer hc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ok, err := hc.Check(ctx, server.ServiceName)
	if err != nil {
		logger.Error("health check failed", slog.String("addr", *addr), sl.Err(err))
		os.Exit(1)
	}
	if !ok {
		logger.Error("service is not serving", slog.String("addr", *addr))
		os.Exit(1)
	}
}
