// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым паролем, проверяя их соответствие.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
)

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш со стандартной стоимостью.
func GetHash(password string) (string, error) {
	return GetHashWithCost(password, bcrypt.DefaultCost)
}

// GetHashWithCost возвращает bcrypt‑хэш с заданной стоимостью.
func GetHashWithCost(password string, cost int) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, errs.ErrInvalidCredentials при несовпадении
// и исходную ошибку bcrypt, если хэш повреждён.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	return fmt.Errorf("%s: %w", op, err)
}
