// Package storage реализует хранилище каталога на основе PostgreSQL:
// пользователей (учётные данные) и товары со встроенной историей цен.
// Ошибки драйвера приводятся к сигнальным ошибкам пакета errs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
)

// PgxPool минимальная абстракция пула соединений, которую используют репозитории.
// Реализуется *pgxpool.Pool и pgxmock.PgxPoolIface.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage инкапсулирует пул соединений с PostgreSQL
// и реализует методы работы с пользователями и товарами.
type Storage struct {
	Pool PgxPool
}

// NewWithPool оборачивает готовый пул, используется в тестах.
func NewWithPool(pool PgxPool) *Storage {
	return &Storage{Pool: pool}
}

// New создаёт пул соединений с PostgreSQL и проверяет доступность базы.
func New(ctx context.Context, connString string, maxConns int32) (*Storage, error) {
	const op = "storage.New"

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{Pool: pool}, nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, errs.ErrStorage, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// isUniqueViolation сообщает, что ошибка: нарушение ограничения уникальности.
func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}

// wrapErr приводит ошибку драйвера к сигнальной ошибке: отсутствие строки: errs.ErrNotFound,
// нарушение уникальности: errs.ErrAlreadyExists, остальное: errs.ErrStorage.
// Отмена контекста возвращается как есть.
func wrapErr(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, errs.ErrAlreadyExists)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, errs.ErrStorage, err)
	}
}
