package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/magabrotheeeer/product-catalog/internal/grpc/client"
)

// switchPinger возвращает ошибку, пока down == true.
type switchPinger struct {
	down atomic.Bool
}

func (p *switchPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestHealthServer_Check(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := &switchPinger{}
	s := NewHealthServer(db, time.Minute, logger)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, s.Check(context.Background()))

	db.down.Store(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, s.Check(context.Background()))
}

func TestHealthServer_ServeWithClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := &switchPinger{}
	s := NewHealthServer(db, 20*time.Millisecond, logger)

	lis := bufconn.Listen(1024 * 1024)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	hc, err := client.NewHealthClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	defer hc.Close()

	assert.Eventually(t, func() bool {
		ok, err := hc.Check(context.Background(), ServiceName)
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond)

	db.down.Store(true)
	assert.Eventually(t, func() bool {
		ok, err := hc.Check(context.Background(), "")
		return err == nil && !ok
	}, 2*time.Second, 10*time.Millisecond)

	_, err = hc.Check(context.Background(), "unknown.Service")
	assert.Error(t, err)

	cancel()
	require.NoError(t, <-done)
	s.Stop()
}
