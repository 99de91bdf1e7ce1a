// Package client содержит gRPC-клиент health-проверки каталога.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient опрашивает grpc.health.v1.Health.
type HealthClient struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewHealthClient создает клиента для addr. Соединение устанавливается лениво,
// при первом вызове.
func NewHealthClient(addr string, opts ...grpc.DialOption) (*HealthClient, error) {
	const op = "grpc.client.NewHealthClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &HealthClient{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Close закрывает соединение.
func (c *HealthClient) Close() error {
	return c.conn.Close()
}

// Check возвращает true, если service в состоянии SERVING.
// Пустое имя означает состояние сервера в целом.
func (c *HealthClient) Check(ctx context.Context, service string) (bool, error) {
	const op = "grpc.client.Check"

	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}
