package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить товар
// @Description Возвращает товар с полной историей цен.
// @Tags Products
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID товара (UUID)"
// @Success 200 {object} response.Response{data=models.ProductResponse} "Товар"
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.read"

	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if status := response.RenderError(w, r, err); status >= http.StatusInternalServerError {
			h.log.Error("failed to read product",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err))
		}
		return
	}

	response.Render(w, r, http.StatusOK, response.StatusOKWithData(models.NewProductResponse(product)))
}
