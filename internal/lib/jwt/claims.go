package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
// Идентификатор пользователя передаётся в стандартном поле sub.
type CustomClaims struct {
	Username             string `json:"username"` // Имя пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (Subject, ExpiresAt, IssuedAt)
}

// UserID разбирает идентификатор пользователя из поля sub.
func (c *CustomClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// GenerateToken создает JWT токен для пользователя, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(userID uuid.UUID, username string) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := CustomClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия.
//
// Истёкший токен возвращает errs.ErrTokenExpired, любой другой сбой: errs.ErrUnauthenticated.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, errs.ErrUnauthenticated, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUnauthenticated)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%s: %w: bad subject", op, errs.ErrUnauthenticated)
	}
	return claims, nil
}
