// Package server реализует gRPC-сервер проверки состояния каталога.
//
// HealthServer публикует стандартный сервис grpc.health.v1.Health и периодически
// переключает статус в зависимости от доступности хранилища.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
)

// ServiceName имя сервиса каталога в ответах health-проверки.
const ServiceName = "catalog.v1.Products"

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer обслуживает gRPC health-проверки.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	db         Pinger
	interval   time.Duration
	log        *slog.Logger
}

// NewHealthServer создает сервер и регистрирует на нем сервис здоровья.
// До первой проверки хранилища статус NOT_SERVING.
func NewHealthServer(db Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     hs,
		db:         db,
		interval:   interval,
		log:        logger,
	}
}

// Check один раз проверяет хранилище и обновляет статус.
func (s *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("storage ping failed", slog.String("op", "grpc.server.Check"), sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve обслуживает соединения на lis и обновляет статус с заданным интервалом,
// пока не отменен ctx.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server listening on", slog.String("address", lis.Addr().String()))
		errCh <- s.grpcServer.Serve(lis)
	}()

	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Stop переводит сервисы в NOT_SERVING и дожидается завершения активных вызовов.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
