package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, actor, id string) (uuid.UUID, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить товар
// @Description Безвозвратно удаляет товар вместе с историей цен.
// @Tags Products
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID товара (UUID)"
// @Success 200 {object} response.Response "Товар удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := h.service.Delete(r.Context(), middlewarectx.Actor(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if status := response.RenderError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to delete product", sl.Err(err))
		}
		return
	}

	log.Info("product deleted", slog.String("id", id.String()))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message": "Product deleted successfully",
		"id":      id.String(),
	}))
}
