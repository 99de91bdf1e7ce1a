// Package services содержит журнал аудита событий каталога.
package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	productsvc "github.com/magabrotheeeer/product-catalog/internal/services/product"
)

// Recorder пишет события товаров в структурированный лог.
type Recorder struct {
	log *slog.Logger
}

// NewRecorder создает Recorder.
func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// Handle разбирает событие и пишет его в лог.
// Нечитаемые сообщения логируются и подтверждаются, чтобы не возвращаться в очередь бесконечно.
func (r *Recorder) Handle(_ context.Context, body []byte) error {
	const op = "services.audit.Handle"

	var event productsvc.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		r.log.Error("malformed product event dropped", slog.String("op", op), slog.Int("size", len(body)), sl.Err(err))
		return nil
	}

	attrs := []any{
		slog.String("event", event.Type),
		slog.String("product_id", event.ProductID.String()),
		slog.String("actor", event.Actor),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if event.Price != "" {
		attrs = append(attrs, slog.String("price", event.Price))
	}
	if event.PreviousPrice != "" {
		attrs = append(attrs, slog.String("previous_price", event.PreviousPrice))
	}

	switch event.Type {
	case productsvc.EventProductCreated, productsvc.EventProductPriceChanged, productsvc.EventProductDeleted:
		r.log.Info("product event", attrs...)
	default:
		r.log.Warn("unknown product event", attrs...)
	}
	return nil
}
