// Package catalog собирает HTTP-сервер каталога товаров и его зависимости.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/product-catalog/internal/cache"
	"github.com/magabrotheeeer/product-catalog/internal/config"
	"github.com/magabrotheeeer/product-catalog/internal/grpc/server"
	"github.com/magabrotheeeer/product-catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/product-catalog/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/product-catalog/internal/lib/sl"
	"github.com/magabrotheeeer/product-catalog/internal/metrics"
	"github.com/magabrotheeeer/product-catalog/internal/migrations"
	authservice "github.com/magabrotheeeer/product-catalog/internal/services/auth"
	productservice "github.com/magabrotheeeer/product-catalog/internal/services/product"
	"github.com/magabrotheeeer/product-catalog/internal/storage"
)

// closer освобождает ресурс при остановке приложения.
type closer struct {
	name  string
	close func() error
}

// App держит HTTP-сервер, gRPC health-сервер и ресурсы, которые нужно закрыть.
type App struct {
	server       *http.Server
	health       *server.HealthServer
	grpcListener net.Listener
	logger       *slog.Logger
	cfg          *config.Config
	closers      []closer
}

// New создает приложение: применяет миграции, подключает хранилище, кэш и брокер,
// собирает сервисы и маршруты. Кэш и брокер необязательны: при их недоступности
// приложение работает без них.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.catalog.New"

	app := &App{logger: logger, cfg: cfg}

	if err := migrations.Up(cfg.StorageConnectionString, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(ctx, cfg.StorageConnectionString, cfg.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.addCloser("storage", func() error { db.Close(); return nil })

	var productCache productservice.Cache
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis is unavailable, running without cache", slog.String("op", op), sl.Err(err))
	} else {
		productCache = cacheRedis
		app.addCloser("redis", cacheRedis.Close)
	}

	publisher, err := app.newPublisher()
	if err != nil {
		app.closeAll()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, cfg.TokenTTL)
	productService := productservice.NewProductService(db, productCache, publisher, m, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:   logger,
		Config:   cfg,
		Auth:     authService,
		Products: productService,
		DB:       db,
		Metrics:  m,
		Gatherer: registry,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if cfg.AddressGRPC != "" {
		lis, err := net.Listen("tcp", cfg.AddressGRPC)
		if err != nil {
			app.closeAll()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.grpcListener = lis
		app.health = server.NewHealthServer(db, cfg.HealthInterval, logger)
	}

	return app, nil
}

func (a *App) newPublisher() (productservice.EventPublisher, error) {
	const op = "app.catalog.newPublisher"

	if a.cfg.RabbitMQ.URL == "" {
		a.logger.Info("rabbitmq url is empty, events are disabled")
		return rabbitmq.NopPublisher{}, nil
	}

	conn, err := rabbitmq.Connect(a.cfg.RabbitMQ.URL, a.cfg.Retries, a.cfg.Delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.addCloser("rabbitmq connection", conn.Close)

	ch, err := rabbitmq.SetupChannel(conn, a.cfg.Exchange, rabbitmq.ProductQueues())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.addCloser("rabbitmq channel", ch.Close)

	return rabbitmq.NewPublisher(ch, a.cfg.Exchange), nil
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

// closeAll закрывает ресурсы в порядке, обратном открытию.
func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error("failed to close resource", slog.String("resource", c.name), sl.Err(err))
		}
	}
	a.closers = nil
}

// Run запускает серверы и блокируется до отмены ctx или ошибки одного из них.
func (a *App) Run(ctx context.Context) error {
	defer a.closeAll()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.health != nil {
		g.Go(func() error {
			return a.health.Serve(gctx, a.grpcListener)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down servers gracefully")

		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(timeoutCtx)
		if a.health != nil {
			a.health.Stop()
		}
		return err
	})

	return g.Wait()
}
