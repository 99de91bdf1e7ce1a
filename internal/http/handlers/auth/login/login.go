// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной аутентификации возвращается токен доступа в теле ответа и в cookie;
// неверные имя, пароль или деактивированный аккаунт дают 401 без уточнения причины.
package login

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/lib/validate"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log          *slog.Logger        // Логгер для записи операций и ошибок
	service      Service             // Сервис аутентификации
	validate     *validator.Validate // Валидатор для проверки входных данных
	secureCookie bool
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	TokenTTL() time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		validate:     validate.New(),
		secureCookie: secureCookie,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по имени и паролю. Возвращает токен доступа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.LoginRequest true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=models.AuthResponse} "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		status, resp := response.DecodeError(err)
		response.Render(w, r, status, resp)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Render(w, r, http.StatusUnprocessableEntity, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status := response.RenderError(w, r, err)
		if status >= http.StatusInternalServerError {
			log.Error("login failed", sl.Err(err))
		} else {
			log.Info("login rejected", slog.String("username", req.Username))
		}
		return
	}

	middlewarectx.SetTokenCookie(w, res.Token, h.service.TokenTTL(), h.secureCookie)
	log.Info("login success", slog.String("username", req.Username))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(res))
}
