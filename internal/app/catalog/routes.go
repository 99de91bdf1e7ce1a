package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/product-catalog/internal/config"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/health"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/product/create"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/product/devtools"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/product/list"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/product/read"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/product/remove"
	"github.com/magabrotheeeer/product-catalog/internal/http/handlers/product/update"
	"github.com/magabrotheeeer/product-catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/product-catalog/internal/http/response"
	"github.com/magabrotheeeer/product-catalog/internal/metrics"
)

// AuthService всё, что маршрутам нужно от сервиса аутентификации.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.Authenticator
}

// ProductService всё, что маршрутам нужно от сервиса товаров.
type ProductService interface {
	create.Service
	read.Service
	update.Service
	remove.Service
	list.Service
	devtools.Service
}

// Deps зависимости HTTP-маршрутов.
type Deps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Auth     AuthService
	Products ProductService
	DB       health.Pinger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// DevRoutesEnabled сообщает, подключаются ли маршруты наполнения каталога.
func DevRoutesEnabled(env string) bool {
	return env == config.EnvLocal || env == config.EnvDev
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger
	secure := d.Config.CookieSecure

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Middleware,
	)

	r.Get("/health", health.New(logger, d.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	gate := middlewarectx.Authenticate(d.Auth, logger, middlewarectx.DefaultExtractors()...)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", register.New(logger, d.Auth, secure).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger, d.Config.RPS, d.Config.Burst)).
			Post("/login", login.New(logger, d.Auth, secure).ServeHTTP)
		r.Post("/logout", logout.New(logger, secure).ServeHTTP)
		r.With(gate).Get("/me", me.New(logger).ServeHTTP)
	})

	// Группа с проверкой токена
	r.Route("/products", func(r chi.Router) {
		r.Use(gate)

		if DevRoutesEnabled(d.Config.Env) {
			r.Post("/test/generate", devtools.NewGenerate(logger, d.Products).ServeHTTP)
			r.Delete("/test/clear", devtools.NewClear(logger, d.Products).ServeHTTP)
		}

		r.Post("/", create.New(logger, d.Products).ServeHTTP)
		r.Get("/", list.New(logger, d.Products).ServeHTTP)
		r.Get("/{id}", read.New(logger, d.Products).ServeHTTP)
		r.Patch("/{id}", update.New(logger, d.Products).ServeHTTP)
		r.Delete("/{id}", remove.New(logger, d.Products).ServeHTTP)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Render(w, r, http.StatusNotFound, response.Error("route not found"))
	})
}
