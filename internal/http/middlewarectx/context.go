package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey ключ для установленного пользователя в контексте.
const IdentityKey Key = "identity"

// WithIdentity кладёт пользователя в контекст.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom достаёт пользователя из контекста.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(*models.Identity)
	return id, ok && id != nil
}

// Actor возвращает имя пользователя из контекста или пустую строку.
func Actor(ctx context.Context) string {
	if id, ok := IdentityFrom(ctx); ok {
		return id.Username
	}
	return ""
}
