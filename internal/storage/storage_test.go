package storage

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

func newMockStorage(t *testing.T) (*Storage, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithPool(mock), mock
}

var productCols = []string{"id", "name", "description", "price", "price_history", "created_by", "updated_by", "created_at", "updated_at", "version"}

func productRow(rows *pgxmock.Rows, id uuid.UUID, price string, history string, version int) *pgxmock.Rows {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(id.String(), "Phone", "Smartphone", price, []byte(history), "alice01", "", ts, ts, version)
}

func TestWrapErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, errs.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, errs.ErrAlreadyExists},
		{"canceled", context.Canceled, context.Canceled},
		{"other", errors.New("boom"), errs.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, wrapErr("op", tt.in), tt.want)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
	assert.Equal(t, "phone", escapeLike("phone"))
}

func TestBuildFilter(t *testing.T) {
	where, args := buildFilter(models.ProductQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	id := uuid.New()
	minP := decimal.NewFromInt(10)
	maxP := decimal.RequireFromString("99.5")
	where, args = buildFilter(models.ProductQuery{
		ID:          &id,
		Name:        "pho",
		Description: "100%",
		MinPrice:    &minP,
		MaxPrice:    &maxP,
	})
	assert.Equal(t, " WHERE id = $1::uuid AND name ILIKE $2 AND description ILIKE $3 AND price >= $4::numeric AND price <= $5::numeric", where)
	assert.Equal(t, []any{id.String(), "%pho%", `%100\%%`, "10", "99.5"}, args)
}

func TestCreateUser(t *testing.T) {
	s, mock := newMockStorage(t)
	ctx := context.Background()
	id := uuid.New()
	ts := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password_hash)`)).
		WithArgs("alice01", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "is_active", "created_at", "updated_at"}).
			AddRow(id.String(), "alice01", "hash", true, ts, ts))
	u, err := s.CreateUser(ctx, "alice01", "hash")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.IsActive)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password_hash)`)).
		WithArgs("alice01", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = s.CreateUser(ctx, "alice01", "hash")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser(t *testing.T) {
	s, mock := newMockStorage(t)
	ctx := context.Background()
	id := uuid.New()
	ts := time.Now().UTC()
	cols := []string{"id", "username", "password_hash", "is_active", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM users WHERE id = \$1::uuid`).
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id.String(), "alice01", "hash", false, ts, ts))
	u, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("nobody1").
		WillReturnError(pgx.ErrNoRows)
	_, err = s.GetUserByUsername(ctx, "nobody1")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProduct(t *testing.T) {
	s, mock := newMockStorage(t)
	ctx := context.Background()
	id := uuid.New()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Product{
		Name:        "Phone",
		Description: "Smartphone",
		Price:       decimal.RequireFromString("199.99"),
		PriceHistory: []models.PriceEntry{
			{Price: decimal.RequireFromString("199.99"), ChangedBy: "alice01", ChangedAt: now},
		},
		CreatedBy: "alice01",
		CreatedAt: now,
		UpdatedAt: now,
	}

	history := `[{"price":"199.99","changed_by":"alice01","changed_at":"2024-05-01T12:00:00Z"}]`
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs("Phone", "Smartphone", "199.99", pgxmock.AnyArg(), "alice01", "", now, now).
		WillReturnRows(productRow(pgxmock.NewRows(productCols), id, "199.99", history, 1))

	created, err := s.CreateProduct(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, 1, created.Version)
	require.Len(t, created.PriceHistory, 1)
	assert.True(t, created.PriceHistory[0].Price.Equal(decimal.RequireFromString("199.99")))
	assert.Equal(t, "alice01", created.PriceHistory[0].ChangedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM products WHERE id = \$1::uuid`).
		WithArgs(id.String()).
		WillReturnError(pgx.ErrNoRows)
	_, err := s.GetProduct(context.Background(), id)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProduct(t *testing.T) {
	id := uuid.New()
	p := &models.Product{
		ID:           id,
		Name:         "Phone",
		Description:  "Smartphone",
		Price:        decimal.NewFromInt(150),
		PriceHistory: []models.PriceEntry{},
		UpdatedBy:    "bob0001",
		UpdatedAt:    time.Now().UTC(),
		Version:      3,
	}

	t.Run("ok", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products`)).
			WithArgs(id.String(), "Phone", "Smartphone", "150", pgxmock.AnyArg(), "bob0001", pgxmock.AnyArg(), 3).
			WillReturnRows(productRow(pgxmock.NewRows(productCols), id, "150", `[]`, 4))
		updated, err := s.UpdateProduct(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version conflict", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products`)).
			WithArgs(id.String(), "Phone", "Smartphone", "150", pgxmock.AnyArg(), "bob0001", pgxmock.AnyArg(), 3).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		_, err := s.UpdateProduct(context.Background(), p)
		require.ErrorIs(t, err, errs.ErrVersionConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products`)).
			WithArgs(id.String(), "Phone", "Smartphone", "150", pgxmock.AnyArg(), "bob0001", pgxmock.AnyArg(), 3).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		_, err := s.UpdateProduct(context.Background(), p)
		require.ErrorIs(t, err, errs.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteProduct(t *testing.T) {
	s, mock := newMockStorage(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1::uuid`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, s.DeleteProduct(ctx, id))

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1::uuid`).
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, s.DeleteProduct(ctx, id), errs.ErrNotFound)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1::uuid`).
		WithArgs(id.String()).
		WillReturnError(errors.New("connection reset"))
	require.ErrorIs(t, s.DeleteProduct(ctx, id), errs.ErrStorage)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts(t *testing.T) {
	s, mock := newMockStorage(t)
	ctx := context.Background()
	id1, id2 := uuid.New(), uuid.New()
	minP := decimal.NewFromInt(100)
	q := models.ProductQuery{
		Page:      2,
		Limit:     2,
		Name:      "pho",
		MinPrice:  &minP,
		SortBy:    models.SortByPrice,
		SortOrder: models.SortAsc,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE name ILIKE $1 AND price >= $2::numeric`)).
		WithArgs("%pho%", "100").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))
	rows := pgxmock.NewRows(productCols)
	productRow(rows, id1, "120", `[]`, 1)
	productRow(rows, id2, "130", `[]`, 2)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY price ASC, id ASC LIMIT $3 OFFSET $4`)).
		WithArgs("%pho%", "100", 2, int64(2)).
		WillReturnRows(rows)

	products, total, err := s.ListProducts(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, products, 2)
	assert.Equal(t, id1, products[0].ID)
	assert.Equal(t, id2, products[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_EmptySkipsPageQuery(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	products, total, err := s.ListProducts(context.Background(), models.ProductQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_PageBeyondTotal(t *testing.T) {
	tests := []struct {
		name string
		page int
	}{
		{"next page", 4},
		{"max int page", math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products`)).
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(30)))

			products, total, err := s.ListProducts(context.Background(), models.ProductQuery{Page: tt.page, Limit: 10})
			require.NoError(t, err)
			assert.EqualValues(t, 30, total)
			assert.Empty(t, products)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsertProducts(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now().UTC()
	products := []*models.Product{
		{Name: "Lamp", Description: "Desk lamp", Price: decimal.NewFromInt(20), CreatedBy: "dev", CreatedAt: now, UpdatedAt: now},
		{Name: "Mug", Description: "Coffee mug", Price: decimal.NewFromInt(5), CreatedBy: "dev", CreatedAt: now, UpdatedAt: now},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs("Lamp", "Desk lamp", "20", pgxmock.AnyArg(), "dev", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs("Mug", "Coffee mug", "5", pgxmock.AnyArg(), "dev", "", now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.InsertProducts(context.Background(), products)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertProducts_RollbackOnError(t *testing.T) {
	s, mock := newMockStorage(t)
	products := []*models.Product{{Name: "Lamp", Description: "Desk lamp", Price: decimal.NewFromInt(20)}}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO products`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.InsertProducts(context.Background(), products)
	require.ErrorIs(t, err, errs.ErrStorage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllProducts(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products`)).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))
	n, err := s.DeleteAllProducts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
