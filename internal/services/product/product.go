// Package services содержит бизнес-логику каталога товаров: создание, частичное обновление
// с ведением истории цен, удаление, выборку и инструменты наполнения для разработки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// MaxUpdateAttempts сколько раз Update перечитывает запись при конфликте версий.
const MaxUpdateAttempts = 3

// ProductRepository определяет методы для работы с товарами в хранилище.
type ProductRepository interface {
	// CreateProduct сохраняет товар вместе с историей и возвращает его с идентификатором.
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	// GetProduct возвращает товар или errs.ErrNotFound.
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// UpdateProduct записывает товар при совпадении версии, иначе errs.ErrVersionConflict.
	UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	// DeleteProduct удаляет товар или возвращает errs.ErrNotFound.
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// ListProducts возвращает страницу товаров и общее количество подходящих.
	ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error)
	// InsertProducts сохраняет пачку товаров в одной транзакции.
	InsertProducts(ctx context.Context, products []*models.Product) (int, error)
	// DeleteAllProducts удаляет все товары.
	DeleteAllProducts(ctx context.Context) (int64, error)
}

// Cache описывает кэш карточек товаров.
type Cache interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool, error)
	SetProduct(ctx context.Context, p *models.Product) error
	InvalidateProduct(ctx context.Context, id uuid.UUID) error
	InvalidateAllProducts(ctx context.Context) error
}

// EventPublisher публикует события товаров.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Metrics учитывает бизнес-события.
type Metrics interface {
	PriceChanged()
}

// ProductService реализует операции над товарами.
// Кэш и публикация событий вспомогательные: их ошибки логируются и не прерывают операцию.
type ProductService struct {
	repo      ProductRepository
	cache     Cache
	publisher EventPublisher
	metrics   Metrics
	log       *slog.Logger
	now       func() time.Time
}

// NewProductService создает новый экземпляр ProductService. cache, publisher и metrics могут быть nil.
func NewProductService(repo ProductRepository, cache Cache, publisher EventPublisher, metrics Metrics, log *slog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени.
func (s *ProductService) WithClock(now func() time.Time) *ProductService {
	s.now = now
	return s
}

// ParseID разбирает идентификатор товара. Неверный формат: errs.ErrInvalidIdentifier.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", errs.ErrInvalidIdentifier, raw)
	}
	return id, nil
}

// Create создает товар. Первая запись истории строится из начальной цены и автора.
func (s *ProductService) Create(ctx context.Context, actor string, req models.CreateProductRequest) (*models.Product, error) {
	const op = "services.ProductService.Create"

	if req.Price == nil {
		return nil, fmt.Errorf("%s: %w: price is required", op, errs.ErrValidation)
	}
	price := decimal.NewFromFloat(*req.Price)
	if price.IsNegative() {
		return nil, fmt.Errorf("%s: %w: price must be non-negative", op, errs.ErrValidation)
	}

	creator := actorOrUnknown(actor)
	now := s.now()
	first, _ := NextPriceEntry(nil, price, creator, now)

	created, err := s.repo.CreateProduct(ctx, &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		PriceHistory: []models.PriceEntry{*first},
		CreatedBy:    creator,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheProduct(ctx, op, created)
	s.publish(ctx, op, ProductEvent{
		Type:       EventProductCreated,
		ProductID:  created.ID,
		Name:       created.Name,
		Price:      created.Price.String(),
		Actor:      creator,
		OccurredAt: now,
	})
	return created, nil
}

// Get возвращает товар с историей цен, сначала пытаясь прочитать его из кэша.
func (s *ProductService) Get(ctx context.Context, rawID string) (*models.Product, error) {
	const op = "services.ProductService.Get"

	id, err := ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		cached, found, err := s.cache.GetProduct(ctx, id)
		if err != nil {
			s.log.Warn("cache read failed", slog.String("op", op), slog.String("id", id.String()), sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheProduct(ctx, op, p)
	return p, nil
}

// Update частично обновляет товар.
//
// Порядок проверок: идентификатор, наличие товара, затем непустой запрос.
// Меняются только переданные поля, updated_by и updated_at выставляются всегда.
// Запись в историю добавляется, только если итоговая цена отличается от последней записи.
// При конфликте версий запись перечитывается и изменения применяются заново,
// не более MaxUpdateAttempts раз.
func (s *ProductService) Update(ctx context.Context, actor, rawID string, req models.UpdateProductRequest) (*models.Product, error) {
	const op = "services.ProductService.Update"

	id, err := ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var newPrice *decimal.Decimal
	if req.Price != nil {
		p := decimal.NewFromFloat(*req.Price)
		if p.IsNegative() {
			return nil, fmt.Errorf("%s: %w: price must be non-negative", op, errs.ErrValidation)
		}
		newPrice = &p
	}
	updater := actorOrUnknown(actor)

	for attempt := 1; attempt <= MaxUpdateAttempts; attempt++ {
		current, err := s.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if req.IsEmpty() {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNoFieldsProvided)
		}

		now := s.now()
		next, appended := applyUpdate(current, req, newPrice, updater, now)

		updated, err := s.repo.UpdateProduct(ctx, next)
		if errors.Is(err, errs.ErrVersionConflict) {
			s.log.Debug("version conflict, retrying",
				slog.String("op", op), slog.String("id", id.String()), slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		s.cacheProduct(ctx, op, updated)
		if appended != nil {
			if s.metrics != nil {
				s.metrics.PriceChanged()
			}
			previous, _ := current.LastPrice()
			s.publish(ctx, op, ProductEvent{
				Type:          EventProductPriceChanged,
				ProductID:     updated.ID,
				Name:          updated.Name,
				Price:         appended.Price.String(),
				PreviousPrice: previous.String(),
				Actor:         updater,
				OccurredAt:    now,
			})
		}
		return updated, nil
	}

	return nil, fmt.Errorf("%s: %w", op, errs.ErrVersionConflict)
}

// applyUpdate строит новую версию товара, не меняя current.
// Возвращает добавленную запись истории или nil.
func applyUpdate(current *models.Product, req models.UpdateProductRequest, newPrice *decimal.Decimal, updater string, now time.Time) (*models.Product, *models.PriceEntry) {
	next := *current
	next.PriceHistory = slices.Clone(current.PriceHistory)

	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if newPrice != nil {
		next.Price = *newPrice
	}
	next.UpdatedBy = updater
	next.UpdatedAt = now

	entry, ok := NextPriceEntry(next.PriceHistory, next.Price, updater, now)
	if !ok {
		return &next, nil
	}
	next.PriceHistory = append(next.PriceHistory, *entry)
	return &next, entry
}

// Delete безвозвратно удаляет товар.
func (s *ProductService) Delete(ctx context.Context, actor, rawID string) (uuid.UUID, error) {
	const op = "services.ProductService.Delete"

	id, err := ParseID(rawID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProduct(ctx, id); err != nil {
			s.log.Warn("cache invalidate failed", slog.String("op", op), slog.String("id", id.String()), sl.Err(err))
		}
	}
	s.publish(ctx, op, ProductEvent{
		Type:       EventProductDeleted,
		ProductID:  id,
		Actor:      actorOrUnknown(actor),
		OccurredAt: s.now(),
	})
	return id, nil
}

// List возвращает страницу товаров по проверенным параметрам выборки.
func (s *ProductService) List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	const op = "services.ProductService.List"

	if q.Page < 1 || q.Limit < 1 {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidQuery)
	}

	products, total, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.ProductPage{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		Products:   products,
	}, nil
}

func (s *ProductService) cacheProduct(ctx context.Context, op string, p *models.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProduct(ctx, p); err != nil {
		s.log.Warn("cache write failed", slog.String("op", op), slog.String("id", p.ID.String()), sl.Err(err))
	}
}

func (s *ProductService) publish(ctx context.Context, op string, event ProductEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.Type, event); err != nil {
		s.log.Warn("event publish failed",
			slog.String("op", op), slog.String("event", event.Type), slog.String("id", event.ProductID.String()), sl.Err(err))
	}
}
