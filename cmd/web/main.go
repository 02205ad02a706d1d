// Package main is the entrypoint for the InnoFeed web client.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/innofeed/innofeed/internal/apiclient"
	"github.com/innofeed/innofeed/internal/cache"
	"github.com/innofeed/innofeed/internal/config"
	"github.com/innofeed/innofeed/internal/feedsync"
	"github.com/innofeed/innofeed/internal/logging"
	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/middleware"
	"github.com/innofeed/innofeed/internal/server"
	"github.com/innofeed/innofeed/internal/session"
	"github.com/innofeed/innofeed/internal/validation"
	"github.com/innofeed/innofeed/internal/web"
)

const sweepSchedule = "@every 5m"

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWeb()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	recorder := metrics.NewInMemory()

	var (
		store       session.Store
		memStore    *session.MemoryStore
		readiness   web.Pinger
		cacheClient *cache.Cache
	)
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		store = cache.NewSessionStore(cacheClient)
		readiness = cacheClient
		logger.Info("connected to Redis")
	default:
		memStore = session.NewMemoryStore()
		store = memStore
	}

	client := apiclient.New(cfg.APIBaseURL, apiclient.NewHTTPClient(cfg.APITimeout), logger, recorder)
	sessions := session.NewManager(store, cfg.SessionTTL, cfg.SessionSecure, logger)

	pages := feedsync.NewRegistry(client, logger, recorder)

	h, err := web.New(web.Deps{
		Auth:      client,
		Sessions:  sessions,
		Pages:     pages,
		Validator: validation.New(),
		Metrics:   recorder,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:         cfg.IsDevelopment(),
		ContentSecurityPolicy: middleware.HTMLContentSecurityPolicy,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", web.Healthz)
	r.Get("/readyz", web.Readyz(readiness))
	r.Get("/metrics", metrics.Handler(recorder))
	r.Handle("/static/*", web.Static())

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		h.Routes(r)
	})

	// Feed screens idle for a whole session TTL belong to expired sessions.
	janitor := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := janitor.AddFunc(sweepSchedule, func() {
		dropped := pages.Sweep(cfg.SessionTTL)
		expired := 0
		if memStore != nil {
			expired = memStore.Sweep()
		}
		if dropped > 0 || expired > 0 {
			logger.Info("swept idle sessions", "feed_screens", dropped, "sessions", expired)
		}
	}); err != nil {
		logger.Error("failed to schedule session sweep", "error", err)
		os.Exit(1)
	}
	janitor.Start()

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("session-sweep", func(ctx context.Context) error {
		select {
		case <-janitor.Stop().Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting web client",
		"port", cfg.AppPort,
		"api_base_url", cfg.APIBaseURL,
		"session_store", cfg.SessionStore,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
