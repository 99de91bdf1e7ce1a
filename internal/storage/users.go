package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/product-catalog/internal/models"
)

const userColumns = `id::text, username, password_hash, is_active, created_at, updated_at`

// CreateUser сохраняет нового пользователя. Занятое имя возвращает errs.ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (username, password_hash)
			  VALUES ($1, $2)
			  RETURNING ` + userColumns
	user, err := scanUser(s.Pool.QueryRow(ctx, query, username, passwordHash))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return user, nil
}

// GetUserByUsername возвращает пользователя по имени или errs.ErrNotFound.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.Pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return user, nil
}

// GetUserByID возвращает пользователя по идентификатору или errs.ErrNotFound.
func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.GetUserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1::uuid`
	user, err := scanUser(s.Pool.QueryRow(ctx, query, id.String()))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		id        string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &u.Username, &u.PasswordHash, &u.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", id, err)
	}
	u.ID = parsed
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return &u, nil
}
