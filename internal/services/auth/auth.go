// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/product-catalog/internal/lib/password"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя, занятое имя возвращает errs.ErrAlreadyExists.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	// GetUserByUsername возвращает пользователя по имени или errs.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByID возвращает пользователя по идентификатору или errs.ErrNotFound.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthService отвечает за регистрацию, вход и проверку токенов доступа.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	tokenTTL time.Duration
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		tokenTTL: tokenTTL,
	}
}

// TokenTTL возвращает время жизни выдаваемых токенов, используется для cookie.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register создает пользователя с bcrypt-хэшем пароля и сразу выдает токен.
func (s *AuthService) Register(ctx context.Context, username, rawPassword string) (*models.AuthResponse, error) {
	const op = "services.AuthService.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.users.CreateUser(ctx, username, hashed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

// Login проверяет имя и пароль. Неизвестное имя, неверный пароль и
// деактивированный аккаунт неразличимы для клиента: все дают errs.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (*models.AuthResponse, error) {
	const op = "services.AuthService.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	return s.issue(op, user)
}

// Authenticate проверяет токен и загружает пользователя.
//
// Возвращает errs.ErrUnauthenticated или errs.ErrTokenExpired для плохого токена,
// errs.ErrForbidden, если пользователь не найден или деактивирован, и errs.ErrStorage
// при сбое хранилища. Состояние хранилища не меняет.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	const op = "services.AuthService.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUnauthenticated)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}
	if err != nil {
		if !errors.Is(err, errs.ErrStorage) {
			err = fmt.Errorf("%w: %w", errs.ErrStorage, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}

	return &models.Identity{ID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) issue(op string, user *models.User) (*models.AuthResponse, error) {
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthResponse{
		User:  models.Identity{ID: user.ID, Username: user.Username},
		Token: token,
	}, nil
}
