// Package logout реализует выход: удаляет cookie с токеном.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
)

type Handler struct {
	log          *slog.Logger
	secureCookie bool
}

func New(log *slog.Logger, secureCookie bool) *Handler {
	return &Handler{log: log, secureCookie: secureCookie}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Удаляет cookie с токеном доступа. Сам токен остаётся действительным до истечения срока.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Cookie удалена"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	middlewarectx.ClearTokenCookie(w, h.secureCookie)
	h.log.Debug("token cookie cleared",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(map[string]any{
		"message": "Logged out successfully",
	}))
}
