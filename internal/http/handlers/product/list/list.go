// Package list реализует HTTP-обработчик выборки товаров с пагинацией,
// фильтрами по id, названию, описанию и диапазону цен, а также сортировкой.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/models"
	productsvc "github.com/magabrotheeeer/product-catalog/internal/services/product"
)

// Handler обрабатывает запросы списка товаров.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку товаров по проверенным параметрам.
type Service interface {
	List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список товаров
// @Description Возвращает страницу товаров. Все фильтры объединяются через AND.
// @Tags Products
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы (>= 1)" default(1)
// @Param limit query int false "Размер страницы (1..100)" default(10)
// @Param id query string false "ID товара (UUID)"
// @Param name query string false "Подстрока названия без учета регистра"
// @Param description query string false "Подстрока описания без учета регистра"
// @Param minPrice query number false "Минимальная цена, включительно"
// @Param maxPrice query number false "Максимальная цена, включительно"
// @Param sortBy query string false "Поле сортировки" Enums(name, price, createdAt, description) default(createdAt)
// @Param sortOrder query string false "Направление сортировки" Enums(asc, desc) default(desc)
// @Success 200 {object} response.Response{data=models.ProductPageResponse} "Страница товаров"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры запроса"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q, err := productsvc.ParseListParams(r.URL.Query())
	if err != nil {
		log.Info("invalid list parameters", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		if status := response.RenderError(w, r, err); status >= http.StatusInternalServerError {
			log.Error("failed to list products", sl.Err(err))
		}
		return
	}

	log.Debug("products listed", slog.Int64("total", page.Total), slog.Int("page", page.Page))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(models.NewProductPageResponse(page)))
}
