package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
)

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// Consume читает очередь queueName и обрабатывает сообщения не более чем workers
// обработчиками одновременно. Блокируется до отмены ctx или закрытия канала
// и дожидается завершения начатых обработчиков.
func Consume(ctx context.Context, ch *amqp.Channel, queueName string, workers int, handler Handler, log *slog.Logger) error {
	const op = "rabbitmq.Consume"

	if workers < 1 {
		workers = 1
	}
	if err := ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer func() {
					<-sem
					wg.Done()
				}()
				if err := handler(ctx, d.Body); err != nil {
					log.Warn("message handling failed, requeue",
						slog.String("op", op), slog.String("queue", queueName), sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", slog.String("op", op), sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", slog.String("op", op), sl.Err(ackErr))
				}
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}
