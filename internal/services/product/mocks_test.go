package services_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// Мок для ProductRepository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RepoMock) ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *RepoMock) InsertProducts(ctx context.Context, products []*models.Product) (int, error) {
	args := m.Called(ctx, products)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) DeleteAllProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Мок для Cache
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Product), args.Bool(1), args.Error(2)
}

func (m *CacheMock) SetProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *CacheMock) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CacheMock) InvalidateAllProducts(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Мок для EventPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

type metricsStub struct{ priceChanges int }

func (m *metricsStub) PriceChanged() { m.priceChanges++ }

// memRepo хранилище в памяти с проверкой версий, для сценарных тестов.
type memRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
}

func newMemRepo() *memRepo {
	return &memRepo{products: map[uuid.UUID]models.Product{}}
}

func clone(p models.Product) *models.Product {
	p.PriceHistory = append([]models.PriceEntry(nil), p.PriceHistory...)
	return &p
}

func (r *memRepo) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *clone(*p)
	stored.ID = uuid.New()
	stored.Version = 1
	r.products[stored.ID] = stored
	return clone(stored), nil
}

func (r *memRepo) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return clone(p), nil
}

func (r *memRepo) UpdateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.products[p.ID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if current.Version != p.Version {
		return nil, errs.ErrVersionConflict
	}
	stored := *clone(*p)
	stored.Version++
	r.products[p.ID] = stored
	return clone(stored), nil
}

func (r *memRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memRepo) ListProducts(context.Context, models.ProductQuery) ([]*models.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, clone(p))
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) InsertProducts(_ context.Context, products []*models.Product) (int, error) {
	for _, p := range products {
		if _, err := r.CreateProduct(context.Background(), p); err != nil {
			return 0, err
		}
	}
	return len(products), nil
}

func (r *memRepo) DeleteAllProducts(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.products))
	r.products = map[uuid.UUID]models.Product{}
	return n, nil
}
