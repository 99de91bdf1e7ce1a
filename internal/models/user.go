// Package models содержит доменные структуры каталога: пользователя, товар с историей цен,
// параметры выборки, а также типизированные запросы и ответы HTTP-слоя.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           uuid.UUID // Идентификатор, назначается хранилищем
	Username     string    // Имя пользователя (уникальное, не меняется)
	PasswordHash string    // bcrypt-хэш пароля
	IsActive     bool      // Деактивированные пользователи не проходят авторизацию
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity пользователь, установленный по проверенному токену.
// Живёт в контексте одного запроса.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// RegisterRequest входные данные регистрации.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=6,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest входные данные авторизации.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=6,max=50"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// AuthResponse возвращается после регистрации и входа.
type AuthResponse struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}
