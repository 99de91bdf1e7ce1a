// Package cache реализует кэш карточек товаров поверх Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/product-catalog/internal/config"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

const productKeyPrefix = "product:"

// Cache хранит JSON-представления значений с ограниченным временем жизни.
type Cache struct {
	Db  *redis.Client
	TTL time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, TTL: cfg.CacheTTL}, nil
}

// Get читает значение по ключу в result. found == false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение на время expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Invalidate"
	if err := c.Db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает клиент Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

// ProductKey возвращает ключ кэша для товара.
func ProductKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

// GetProduct возвращает закэшированный товар.
func (c *Cache) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool, error) {
	var p models.Product
	found, err := c.Get(ctx, ProductKey(id), &p)
	if err != nil || !found {
		return nil, false, err
	}
	return &p, true, nil
}

// SetProduct кладёт товар в кэш на время TTL.
func (c *Cache) SetProduct(ctx context.Context, p *models.Product) error {
	return c.Set(ctx, ProductKey(p.ID), p, c.TTL)
}

// InvalidateProduct удаляет товар из кэша.
func (c *Cache) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return c.Invalidate(ctx, ProductKey(id))
}

// InvalidateAllProducts удаляет все ключи товаров.
func (c *Cache) InvalidateAllProducts(ctx context.Context) error {
	const op = "cache.InvalidateAllProducts"
	iter := c.Db.Scan(ctx, 0, productKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
