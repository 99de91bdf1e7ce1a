package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// Значения пагинации по умолчанию.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParseListParams разбирает параметры строки запроса списка товаров.
//
// Пустые параметры считаются отсутствующими. Некорректная пагинация, сортировка или
// цены возвращают errs.ErrInvalidQuery, некорректный id: errs.ErrInvalidIdentifier.
// limit больше MaxLimit урезается до MaxLimit.
func ParseListParams(values url.Values) (models.ProductQuery, error) {
	const op = "services.ParseListParams"

	q := models.ProductQuery{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    models.SortByCreatedAt,
		SortOrder: models.SortDesc,
	}

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, fmt.Errorf("%s: %w: page must be a positive integer", op, errs.ErrInvalidQuery)
		}
		q.Page = page
	}

	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return q, fmt.Errorf("%s: %w: limit must be a positive integer", op, errs.ErrInvalidQuery)
		}
		q.Limit = min(limit, MaxLimit)
	}

	if v := strings.TrimSpace(values.Get("id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return q, fmt.Errorf("%s: %w", op, errs.ErrInvalidIdentifier)
		}
		q.ID = &id
	}

	q.Name = strings.TrimSpace(values.Get("name"))
	q.Description = strings.TrimSpace(values.Get("description"))

	var err error
	if q.MinPrice, err = parsePrice(values.Get("minPrice")); err != nil {
		return q, fmt.Errorf("%s: %w: minPrice must be a number", op, errs.ErrInvalidQuery)
	}
	if q.MaxPrice, err = parsePrice(values.Get("maxPrice")); err != nil {
		return q, fmt.Errorf("%s: %w: maxPrice must be a number", op, errs.ErrInvalidQuery)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return q, fmt.Errorf("%s: %w: minPrice exceeds maxPrice", op, errs.ErrInvalidQuery)
	}

	if v := strings.TrimSpace(values.Get("sortBy")); v != "" {
		switch field := models.SortField(v); field {
		case models.SortByName, models.SortByPrice, models.SortByCreatedAt, models.SortByDescription:
			q.SortBy = field
		default:
			return q, fmt.Errorf("%s: %w: unsupported sortBy %q", op, errs.ErrInvalidQuery, v)
		}
	}

	if v := strings.TrimSpace(values.Get("sortOrder")); v != "" {
		switch order := models.SortOrder(strings.ToLower(v)); order {
		case models.SortAsc, models.SortDesc:
			q.SortOrder = order
		default:
			return q, fmt.Errorf("%s: %w: sortOrder must be asc or desc", op, errs.ErrInvalidQuery)
		}
	}

	return q, nil
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
