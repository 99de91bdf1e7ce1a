package services

import (
	"time"

	"github.com/google/uuid"
)

// Ключи маршрутизации событий товаров.
const (
	EventProductCreated      = "product.created"
	EventProductPriceChanged = "product.price_changed"
	EventProductDeleted      = "product.deleted"
)

// ProductEvent сообщение о жизненном цикле товара. Цены передаются строками без потери точности.
type ProductEvent struct {
	Type          string    `json:"type"`
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name,omitempty"`
	Price         string    `json:"price,omitempty"`
	PreviousPrice string    `json:"previous_price,omitempty"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}
