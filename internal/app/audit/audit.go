// Package audit собирает воркер, который читает события каталога из RabbitMQ
// и пишет их в журнал.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/product-catalog/internal/config"
	"github.com/magabrotheeeer/product-catalog/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	auditservice "github.com/magabrotheeeer/product-catalog/internal/services/audit"
)

// ErrDisabled возвращается, если адрес RabbitMQ не задан.
var ErrDisabled = errors.New("rabbitmq url is empty")

// App держит соединение с брокером и обработчик событий.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	recorder *auditservice.Recorder
	workers  int
	logger   *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди событий.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.audit.New"

	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrDisabled)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.Retries, cfg.Delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.ProductQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:     conn,
		ch:       ch,
		recorder: auditservice.NewRecorder(logger),
		workers:  cfg.Workers,
		logger:   logger,
	}, nil
}

// Run читает очередь аудита до отмены ctx, затем закрывает канал и соединение.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("audit consumer started", slog.String("queue", rabbitmq.AuditQueue), slog.Int("workers", a.workers))

	err := rabbitmq.Consume(ctx, a.ch, rabbitmq.AuditQueue, a.workers, a.recorder.Handle, a.logger)
	if err != nil {
		a.logger.Error("audit consumer failed", sl.Err(err))
	}

	a.logger.Info("audit consumer shutting down gracefully")
	if closeErr := a.ch.Close(); closeErr != nil {
		a.logger.Error("failed to close channel", sl.Err(closeErr))
	}
	if closeErr := a.conn.Close(); closeErr != nil {
		a.logger.Error("failed to close connection", sl.Err(closeErr))
	}
	return err
}
