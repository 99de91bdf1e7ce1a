// Package me возвращает пользователя, установленного по токену.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Identity} "Текущий пользователь"
// @Failure 401 {object} response.ErrorResponse "Нет токена или токен недействителен"
// @Failure 403 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	identity, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		h.log.Error("identity missing in context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		response.Render(w, r, http.StatusUnauthorized,
			response.ErrorWithDetails("Authentication required", "No valid token provided"))
		return
	}
	response.Render(w, r, http.StatusOK, response.StatusOKWithData(identity))
}
