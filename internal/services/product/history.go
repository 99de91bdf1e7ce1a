package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// NextPriceEntry решает, нужна ли новая запись в истории цен.
//
// Запись добавляется, только если история пуста или цена отличается от цены
// последней записи. Сравнение числовое: 10 и 10.00 считаются одной ценой.
// Функция не меняет history.
func NextPriceEntry(history []models.PriceEntry, newPrice decimal.Decimal, actor string, now time.Time) (*models.PriceEntry, bool) {
	if n := len(history); n > 0 && history[n-1].Price.Equal(newPrice) {
		return nil, false
	}
	return &models.PriceEntry{
		Price:     newPrice,
		ChangedBy: actorOrUnknown(actor),
		ChangedAt: now,
	}, true
}

func actorOrUnknown(actor string) string {
	if actor == "" {
		return models.UnknownActor
	}
	return actor
}
