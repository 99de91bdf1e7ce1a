// Package devtools содержит обработчики для наполнения и очистки каталога.
// Маршруты подключаются только в окружениях local и dev.
package devtools

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	productsvc "github.com/magabrotheeeer/product-catalog/internal/services/product"
)

// Service описывает операции наполнения каталога.
type Service interface {
	Generate(ctx context.Context, actor string, count int) (int, error)
	Clear(ctx context.Context) (int64, error)
}

// GenerateHandler создает случайные товары.
type GenerateHandler struct {
	log     *slog.Logger
	service Service
}

// NewGenerate создает GenerateHandler.
func NewGenerate(log *slog.Logger, service Service) *GenerateHandler {
	return &GenerateHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сгенерировать тестовые товары
// @Description Только для окружений local и dev.
// @Tags Dev
// @Produce  json
// @Security BearerAuth
// @Param count query int false "Количество (1..1000)" default(30)
// @Success 201 {object} response.Response "Товары созданы"
// @Failure 400 {object} response.ErrorResponse "Некорректное количество"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products/test/generate [post]
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.devtools.generate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	count := productsvc.DefaultGenerateCount
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.RenderError(w, r, fmt.Errorf("%s: %w: count must be an integer", op, errs.ErrInvalidQuery))
			return
		}
		count = n
	}

	inserted, err := h.service.Generate(r.Context(), middlewarectx.Actor(r.Context()), count)
	if err != nil {
		if status := response.RenderError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to generate products", sl.Err(err))
		}
		return
	}

	log.Info("test products generated", slog.Int("count", inserted))
	response.Render(w, r, http.StatusCreated, response.StatusOKWithData(map[string]any{
		"message": fmt.Sprintf("%d test products created", inserted),
		"count":   inserted,
	}))
}

// ClearHandler удаляет все товары.
type ClearHandler struct {
	log     *slog.Logger
	service Service
}

// NewClear создает ClearHandler.
func NewClear(log *slog.Logger, service Service) *ClearHandler {
	return &ClearHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить все товары
// @Description Только для окружений local и dev.
// @Tags Dev
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Товары удалены"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products/test/clear [delete]
func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.devtools.clear"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	deleted, err := h.service.Clear(r.Context())
	if err != nil {
		log.Error("failed to clear products", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Warn("all products deleted", slog.Int64("count", deleted))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message":      "All products deleted",
		"deletedCount": deleted,
	}))
}
