package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// Ограничения генератора тестовых товаров.
const (
	DefaultGenerateCount = 30
	MaxGenerateCount     = 1000
)

var (
	sampleAdjectives = []string{"Compact", "Wireless", "Vintage", "Smart", "Ergonomic", "Portable", "Premium", "Classic"}
	sampleNouns      = []string{"Lamp", "Keyboard", "Backpack", "Kettle", "Headphones", "Chair", "Notebook", "Speaker"}
	sampleTraits     = []string{"for everyday use", "with long warranty", "made of recycled materials", "in gift packaging"}
)

// Generate создает count случайных товаров одной транзакцией.
// У каждого товара синтезируется первая запись истории цен.
func (s *ProductService) Generate(ctx context.Context, actor string, count int) (int, error) {
	const op = "services.ProductService.Generate"

	if count < 1 || count > MaxGenerateCount {
		return 0, fmt.Errorf("%s: %w: count must be between 1 and %d", op, errs.ErrInvalidQuery, MaxGenerateCount)
	}

	creator := actorOrUnknown(actor)
	now := s.now()
	products := make([]*models.Product, 0, count)
	for range count {
		adj := sampleAdjectives[rand.IntN(len(sampleAdjectives))]
		noun := sampleNouns[rand.IntN(len(sampleNouns))]
		price := decimal.New(rand.Int64N(99_900)+100, -2)
		first, _ := NextPriceEntry(nil, price, creator, now)

		products = append(products, &models.Product{
			Name:         adj + " " + noun,
			Description:  fmt.Sprintf("%s %s %s", adj, noun, sampleTraits[rand.IntN(len(sampleTraits))]),
			Price:        price,
			PriceHistory: []models.PriceEntry{*first},
			CreatedBy:    creator,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	inserted, err := s.repo.InsertProducts(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return inserted, nil
}

// Clear удаляет все товары и возвращает их количество.
func (s *ProductService) Clear(ctx context.Context) (int64, error) {
	const op = "services.ProductService.Clear"

	deleted, err := s.repo.DeleteAllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateAllProducts(ctx); err != nil {
			s.log.Warn("cache flush failed", slog.String("op", op), sl.Err(err))
		}
	}
	return deleted, nil
}
