// Package middlewarectx содержит HTTP middleware: проверку токена доступа,
// ограничение частоты запросов и хелперы для данных запроса в контексте.
//
// Authenticate перебирает источники токена по порядку (заголовок Authorization,
// затем cookie), проверяет токен и пользователя и кладёт пользователя в контекст.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// TokenCookie имя cookie с токеном доступа.
const TokenCookie = "token"

// Authenticator проверяет токен и возвращает активного пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// TokenExtractor достаёт токен из запроса. ok == false, если токена в этом источнике нет.
type TokenExtractor func(r *http.Request) (token string, ok bool)

// BearerHeader читает токен из заголовка "Authorization: Bearer <token>".
func BearerHeader(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Cookie возвращает источник токена из cookie с именем name.
func Cookie(name string) TokenExtractor {
	return func(r *http.Request) (string, bool) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
}

// DefaultExtractors заголовок имеет приоритет над cookie.
func DefaultExtractors() []TokenExtractor {
	return []TokenExtractor{BearerHeader, Cookie(TokenCookie)}
}

// ExtractToken возвращает токен из первого источника, где он есть.
func ExtractToken(r *http.Request, extractors []TokenExtractor) (string, bool) {
	for _, extract := range extractors {
		if token, ok := extract(r); ok {
			return token, true
		}
	}
	return "", false
}

// Authenticate возвращает middleware, пропускающий запрос дальше только с валидным токеном
// активного пользователя. Состояние хранилища не меняет.
func Authenticate(auth Authenticator, log *slog.Logger, extractors ...TokenExtractor) func(http.Handler) http.Handler {
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := ExtractToken(r, extractors)
			if !ok {
				log.Info("no token provided")
				response.Render(w, r, http.StatusUnauthorized,
					response.ErrorWithDetails("Authentication required", "No valid token provided"))
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, errs.ErrTokenExpired),
					errors.Is(err, errs.ErrUnauthenticated),
					errors.Is(err, errs.ErrForbidden):
					log.Info("authentication rejected", sl.Err(err))
					response.RenderError(w, r, err)
				default:
					log.Error("failed to authenticate", sl.Err(err))
					response.Render(w, r, http.StatusInternalServerError, response.Error("internal error"))
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
