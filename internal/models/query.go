package models

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortField допустимое поле сортировки списка товаров.
type SortField string

// Допустимые поля сортировки.
const (
	SortByName        SortField = "name"
	SortByPrice       SortField = "price"
	SortByCreatedAt   SortField = "createdAt"
	SortByDescription SortField = "description"
)

// SortOrder направление сортировки.
type SortOrder string

// Допустимые направления сортировки.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ProductQuery проверенные параметры выборки товаров.
// Все заданные фильтры объединяются через AND.
type ProductQuery struct {
	Page        int
	Limit       int
	ID          *uuid.UUID
	Name        string           // Подстрока без учёта регистра
	Description string           // Подстрока без учёта регистра
	MinPrice    *decimal.Decimal // Включительно
	MaxPrice    *decimal.Decimal // Включительно
	SortBy      SortField
	SortOrder   SortOrder
}

// Offset возвращает количество пропускаемых записей для текущей страницы.
// При переполнении возвращается math.MaxInt64.
func (q ProductQuery) Offset() int64 {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	pages, limit := int64(q.Page-1), int64(q.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// ProductPage страница результатов выборки.
type ProductPage struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	Products   []*Product
}

// ProductPageResponse страница результатов в ответе API.
type ProductPageResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"totalPages"`
	Products   []ProductResponse `json:"products"`
}

// NewProductPageResponse строит ответ API для страницы товаров.
func NewProductPageResponse(p *ProductPage) ProductPageResponse {
	products := make([]ProductResponse, 0, len(p.Products))
	for _, item := range p.Products {
		products = append(products, NewProductResponse(item))
	}
	return ProductPageResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
		Products:   products,
	}
}
