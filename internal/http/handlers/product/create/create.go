// Package create реализует HTTP-обработчик создания товара.
//
// Handler принимает JSON с названием, описанием и ценой, валидирует его, берёт автора
// из контекста и возвращает созданный товар вместе с первой записью истории цен.
// Поля аудита из тела запроса игнорируются.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/lib/validate"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

// Handler управляет HTTP-запросами на создание товаров.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики товаров
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания товара.
type Service interface {
	Create(ctx context.Context, actor string, req models.CreateProductRequest) (*models.Product, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать товар
// @Description Создает товар. Первая запись истории цен формируется из начальной цены и автора.
// @Tags Products
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreateProductRequest true "Данные нового товара"
// @Success 201 {object} response.Response{data=models.ProductResponse} "Товар создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateProductRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		status, resp := response.DecodeError(err)
		response.Render(w, r, status, resp)
		return
	}
	req.Normalize()
	log.Debug("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Render(w, r, http.StatusUnprocessableEntity, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	product, err := h.service.Create(r.Context(), middlewarectx.Actor(r.Context()), req)
	if err != nil {
		if status := response.RenderError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to create product", sl.Err(err))
		}
		return
	}

	log.Info("product created", slog.String("id", product.ID.String()))
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(models.NewProductResponse(product)))
}
