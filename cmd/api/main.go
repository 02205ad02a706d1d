// Package main is the entrypoint for the InnoFeed backend API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/innofeed/innofeed/internal/cache"
	"github.com/innofeed/innofeed/internal/config"
	"github.com/innofeed/innofeed/internal/handler"
	"github.com/innofeed/innofeed/internal/logging"
	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/middleware"
	"github.com/innofeed/innofeed/internal/repository"
	"github.com/innofeed/innofeed/internal/server"
	"github.com/innofeed/innofeed/internal/service"
	"github.com/innofeed/innofeed/internal/validation"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	version, err := repository.Migrate(cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to migrate database",
			slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", logging.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("database schema ready", "version", version)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", logging.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	recorder := metrics.NewInMemory()

	// The cache is optional; without it every /domains call hits Postgres.
	var (
		domainCache service.DomainCache
		redisCheck  handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		domainCache = cacheClient
		redisCheck = cacheClient
		logger.Info("connected to Redis")
	}

	h := handler.New(handler.Deps{
		Accounts:  service.NewAccountService(repo),
		Catalog:   service.NewCatalogService(repo, domainCache, logger, recorder),
		Feeds:     service.NewFeedService(repo),
		Validator: validation.New(),
		Metrics:   recorder,
		Logger:    logger,
	})
	health := handler.NewHealthHandler(
		handler.Check{Name: "postgres", Checker: repo},
		handler.Check{Name: "redis", Checker: redisCheck},
	)

	r := setupRouter(h, health, recorder, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	health *handler.HealthHandler,
	recorder *metrics.InMemoryRecorder,
	cfg *config.API,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(cfg.GetCORSAllowedOrigins()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", metrics.Handler(recorder))

	h.Routes(r)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
