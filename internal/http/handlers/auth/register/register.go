// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Handler принимает имя и пароль, валидирует их, создаёт пользователя через сервис
// и возвращает токен доступа в теле ответа и в cookie.
package register

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

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log          *slog.Logger        // Логгер для записи операций и ошибок
	service      Service             // Сервис аутентификации
	validate     *validator.Validate // Валидатор входных данных
	secureCookie bool                // Выставлять ли cookie с флагом Secure
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, username, password string) (*models.AuthResponse, error)
	TokenTTL() time.Duration
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		validate:     validate.New(),
		secureCookie: secureCookie,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя и возвращает токен доступа (также в cookie token).
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.RegisterRequest true "Имя пользователя и пароль"
// @Success 201 {object} response.Response{data=models.AuthResponse} "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Имя пользователя занято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RegisterRequest
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

	res, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		status := response.RenderError(w, r, err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to register user", sl.Err(err))
		} else {
			log.Info("registration rejected", sl.Err(err))
		}
		return
	}

	middlewarectx.SetTokenCookie(w, res.Token, h.service.TokenTTL(), h.secureCookie)
	log.Info("user registered", slog.String("username", res.User.Username))
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(res))
}
