package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log *slog.Logger
	db  Pinger
}

func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис доступен"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("storage is unavailable", slog.String("op", op), sl.Err(err))
		response.Render(w, r, http.StatusServiceUnavailable, response.ErrorWithDetails("unavailable", "storage is unreachable"))
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
