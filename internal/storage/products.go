package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

const productColumns = `id::text, name, description, price::text, price_history, created_by, updated_by, created_at, updated_at, version`

// sortColumns сопоставляет поле сортировки API со столбцом таблицы.
var sortColumns = map[models.SortField]string{
	models.SortByName:        "name",
	models.SortByPrice:       "price",
	models.SortByCreatedAt:   "created_at",
	models.SortByDescription: "description",
}

// CreateProduct сохраняет товар одной строкой вместе с историей цен
// и возвращает запись с присвоенным идентификатором и версией.
func (s *Storage) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	const op = "storage.CreateProduct"

	history, err := json.Marshal(p.PriceHistory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO products (name, description, price, price_history, created_by, updated_by, created_at, updated_at)
			  VALUES ($1, $2, $3::numeric, $4::jsonb, $5, $6, $7, $8)
			  RETURNING ` + productColumns
	created, err := scanProduct(s.Pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Price.String(), history, p.CreatedBy, p.UpdatedBy, p.CreatedAt, p.UpdatedAt))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return created, nil
}

// GetProduct возвращает товар по идентификатору или errs.ErrNotFound.
func (s *Storage) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	const op = "storage.GetProduct"

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1::uuid`
	p, err := scanProduct(s.Pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// UpdateProduct записывает изменённые поля и историю, если версия в базе совпадает с p.Version.
// Версия увеличивается на единицу. Если строка есть, но версия другая, возвращается
// errs.ErrVersionConflict; если строки нет, возвращается errs.ErrNotFound.
func (s *Storage) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	const op = "storage.UpdateProduct"

	history, err := json.Marshal(p.PriceHistory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE products
			  SET name = $2, description = $3, price = $4::numeric, price_history = $5::jsonb,
			      updated_by = $6, updated_at = $7, version = version + 1
			  WHERE id = $1::uuid AND version = $8
			  RETURNING ` + productColumns
	updated, err := scanProduct(s.Pool.QueryRow(ctx, query,
		p.ID.String(), p.Name, p.Description, p.Price.String(), history, p.UpdatedBy, p.UpdatedAt, p.Version))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapErr(op, err)
	}

	var exists bool
	if err := s.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1::uuid)`, p.ID.String()).Scan(&exists); err != nil {
		return nil, wrapErr(op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil, fmt.Errorf("%s: %w", op, errs.ErrVersionConflict)
}

// DeleteProduct безвозвратно удаляет товар. Отсутствие строки возвращает errs.ErrNotFound.
func (s *Storage) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteProduct"

	tag, err := s.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1::uuid`, id.String())
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

// ListProducts возвращает общее количество подходящих товаров и одну страницу выборки.
// Оба запроса используют одно и то же условие WHERE.
// Страница за пределами выборки возвращается пустой без второго запроса.
func (s *Storage) ListProducts(ctx context.Context, q models.ProductQuery) ([]*models.Product, int64, error) {
	const op = "storage.ListProducts"

	where, args := buildFilter(q)

	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapErr(op, err)
	}
	offset := q.Offset()
	if total == 0 || offset >= total {
		return []*models.Product{}, total, nil
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortOrder == models.SortAsc {
		direction = "ASC"
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		productColumns, where, column, direction, n+1, n+2)
	args = append(args, q.Limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0, q.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, wrapErr(op, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}
	return products, total, nil
}

// InsertProducts сохраняет пачку товаров в одной транзакции и возвращает их количество.
func (s *Storage) InsertProducts(ctx context.Context, products []*models.Product) (int, error) {
	const op = "storage.InsertProducts"

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, wrapErr(op, err)
	}

	query := `INSERT INTO products (name, description, price, price_history, created_by, updated_by, created_at, updated_at)
			  VALUES ($1, $2, $3::numeric, $4::jsonb, $5, $6, $7, $8)`
	for _, p := range products {
		history, err := json.Marshal(p.PriceHistory)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := tx.Exec(ctx, query,
			p.Name, p.Description, p.Price.String(), history, p.CreatedBy, p.UpdatedBy, p.CreatedAt, p.UpdatedAt); err != nil {
			_ = tx.Rollback(ctx)
			return 0, wrapErr(op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrapErr(op, err)
	}
	return len(products), nil
}

// DeleteAllProducts удаляет все товары и возвращает количество удалённых строк.
func (s *Storage) DeleteAllProducts(ctx context.Context) (int64, error) {
	const op = "storage.DeleteAllProducts"

	tag, err := s.Pool.Exec(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, wrapErr(op, err)
	}
	return tag.RowsAffected(), nil
}

// buildFilter строит условие WHERE и аргументы по фильтрам запроса.
func buildFilter(q models.ProductQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}

	if q.ID != nil {
		add("id = ?::uuid", q.ID.String())
	}
	if q.Name != "" {
		add("name ILIKE ?", "%"+escapeLike(q.Name)+"%")
	}
	if q.Description != "" {
		add("description ILIKE ?", "%"+escapeLike(q.Description)+"%")
	}
	if q.MinPrice != nil {
		add("price >= ?::numeric", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		add("price <= ?::numeric", q.MaxPrice.String())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike экранирует спецсимволы шаблона LIKE, чтобы подстрока искалась буквально.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p         models.Product
		id        string
		price     string
		history   []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &price, &history,
		&p.CreatedBy, &p.UpdatedBy, &createdAt, &updatedAt, &p.Version); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad product id %q: %w", id, err)
	}
	p.ID = parsed

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("bad price %q: %w", price, err)
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.PriceHistory); err != nil {
			return nil, fmt.Errorf("bad price history: %w", err)
		}
	}
	if p.PriceHistory == nil {
		p.PriceHistory = []models.PriceEntry{}
	}
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return &p, nil
}
