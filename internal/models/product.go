package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownActor подставляется в audit-поля, если вызывающий не установлен.
const UnknownActor = "Unknown"

// PriceEntry неизменяемая запись истории цен: значение, автор изменения и время.
type PriceEntry struct {
	Price     decimal.Decimal `json:"price"`
	ChangedBy string          `json:"changed_by"`
	ChangedAt time.Time       `json:"changed_at"`
}

// Product товар вместе с полной историей цен.
//
// PriceHistory упорядочена от старых записей к новым и только дополняется.
// Version увеличивается при каждом обновлении и используется для проверки конкурентной записи.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	PriceHistory []PriceEntry    `json:"price_history"`
	CreatedBy    string          `json:"created_by"`
	UpdatedBy    string          `json:"updated_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// LastPrice возвращает цену из последней записи истории.
// ok == false, если история пуста.
func (p *Product) LastPrice() (decimal.Decimal, bool) {
	if len(p.PriceHistory) == 0 {
		return decimal.Zero, false
	}
	return p.PriceHistory[len(p.PriceHistory)-1].Price, true
}

// CreateProductRequest тело запроса на создание товара.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=3"`
	Description string   `json:"description" validate:"required,min=5"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

// Normalize обрезает пробельные символы по краям строковых полей.
func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

// UpdateProductRequest частичное обновление: отсутствующие поля не меняются.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=3"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=5"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// Normalize обрезает пробельные символы по краям переданных строковых полей.
func (r *UpdateProductRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Description != nil {
		v := strings.TrimSpace(*r.Description)
		r.Description = &v
	}
}

// IsEmpty сообщает, что в запросе нет ни одного поля для обновления.
func (r *UpdateProductRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil
}

// PriceEntryResponse запись истории цен в ответе API.
type PriceEntryResponse struct {
	Price     float64   `json:"price"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// ProductResponse представление товара в ответе API.
type ProductResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Price        float64              `json:"price"`
	PriceHistory []PriceEntryResponse `json:"priceHistory"`
	CreatedBy    string               `json:"createdBy"`
	UpdatedBy    string               `json:"updatedBy,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
	Version      int                  `json:"version"`
}

// NewProductResponse строит ответ API из доменной модели.
func NewProductResponse(p *Product) ProductResponse {
	history := make([]PriceEntryResponse, 0, len(p.PriceHistory))
	for _, e := range p.PriceHistory {
		history = append(history, PriceEntryResponse{
			Price:     e.Price.InexactFloat64(),
			ChangedBy: e.ChangedBy,
			ChangedAt: e.ChangedAt,
		})
	}
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.InexactFloat64(),
		PriceHistory: history,
		CreatedBy:    p.CreatedBy,
		UpdatedBy:    p.UpdatedBy,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}
