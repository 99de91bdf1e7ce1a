// Package update реализует HTTP-обработчик частичного обновления товара.
//
// Из тела запроса удаляются защищённые поля (идентификатор, поля аудита, история цен,
// версия), остальное проверяется и передаётся сервису. Пустой запрос тоже передаётся
// сервису: сначала проверяются идентификатор и наличие товара, и только потом
// отсутствие полей даёт 400.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/lib/validate"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

const maxBodyBytes = 1 << 20

// ProtectedFields ключи, которые клиент не может менять через обновление.
var ProtectedFields = []string{
	"id", "_id",
	"createdBy", "_createdBy",
	"updatedBy", "_updatedBy",
	"priceHistory",
	"createdAt", "updatedAt",
	"version",
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Update(ctx context.Context, actor, id string, req models.UpdateProductRequest) (*models.Product, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// StripProtected удаляет защищённые ключи из тела запроса.
func StripProtected(body map[string]json.RawMessage) {
	for _, key := range ProtectedFields {
		delete(body, key)
	}
}

// ServeHTTP godoc
// @Summary Обновить товар
// @Description Частично обновляет название, описание или цену. Новая цена, отличная от последней в истории, добавляет запись в историю.
// @Tags Products
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID товара (UUID)"
// @Param request body models.UpdateProductRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.ProductResponse} "Товар обновлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный id, JSON или нет полей для обновления"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Failure 409 {object} response.ErrorResponse "Конкурентное изменение"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		response.Render(w, r, http.StatusBadRequest, response.Error("failed to decode request"))
		return
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Render(w, r, http.StatusBadRequest, response.Error("failed to decode request"))
		return
	}
	StripProtected(body)

	cleaned, err := json.Marshal(body)
	if err != nil {
		log.Error("failed to re-encode request body", sl.Err(err))
		response.Render(w, r, http.StatusInternalServerError, response.Error("internal error"))
		return
	}
	var req models.UpdateProductRequest
	if err := json.Unmarshal(cleaned, &req); err != nil {
		log.Info("failed to decode update fields", sl.Err(err))
		status, resp := response.DecodeError(err)
		response.Render(w, r, status, resp)
		return
	}
	req.Normalize()

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("validation failed", sl.Err(err))
			response.Render(w, r, http.StatusUnprocessableEntity, response.ValidationError(verrs))
			return
		}
		log.Error("validator failed", sl.Err(err))
		response.Render(w, r, http.StatusInternalServerError, response.Error("internal error"))
		return
	}

	product, err := h.service.Update(r.Context(), middlewarectx.Actor(r.Context()), id, req)
	if err != nil {
		if status := response.RenderError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to update product", sl.Err(err))
		} else {
			log.Info("update rejected", slog.String("id", id), sl.Err(err))
		}
		return
	}

	log.Info("product updated", slog.String("id", id), slog.Int("version", product.Version))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(models.NewProductResponse(product)))
}
