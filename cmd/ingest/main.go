// Package main is the entrypoint for the InnoFeed ingestion job. It pulls
// recent arXiv papers, and Google Patents results when SERPAPI_KEY is set,
// for every configured domain into the catalog, once or on a cron schedule.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/innofeed/innofeed/internal/cache"
	"github.com/innofeed/innofeed/internal/config"
	"github.com/innofeed/innofeed/internal/ingest"
	"github.com/innofeed/innofeed/internal/logging"
	"github.com/innofeed/innofeed/internal/repository"
	"github.com/innofeed/innofeed/internal/summarizer"
)

// options override the environment for one invocation.
type options struct {
	Once       bool   `long:"once" description:"Run a single pass and exit, even when INGEST_SCHEDULE is set"`
	Sources    string `long:"sources" description:"YAML file mapping domains to arXiv categories and patent queries (overrides SOURCES_FILE)"`
	MaxResults int    `long:"max-results" description:"Items fetched per domain and source (overrides MAX_RESULTS)"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.LoadIngest()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if opts.Sources != "" {
		cfg.SourcesFile = opts.Sources
	}
	if opts.MaxResults > 0 {
		cfg.MaxResults = opts.MaxResults
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.Once, logger); err != nil {
		logger.Error("ingest failed", "error", logging.SanitizeError(err, cfg.DatabaseURL, cfg.RedisURL))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Ingest, once bool, logger *slog.Logger) error {
	sources, err := ingest.LoadSources(cfg.SourcesFile)
	if err != nil {
		return err
	}

	if _, err := repository.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()
	logger.Info("connected to database", "database_url", logging.RedactURL(cfg.DatabaseURL))

	ingestOpts := ingest.Options{Sources: sources, MaxResults: cfg.MaxResults}
	if cfg.RedisURL != "" {
		cacheClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer cacheClient.Close()
		ingestOpts.Catalog = cacheClient
	}

	var s summarizer.Summarizer = summarizer.Truncator{}
	if cfg.OpenAIAPIKey != "" {
		s = summarizer.NewFallback(summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey), logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, summaries are truncated abstracts")
	}

	if cfg.SerpAPIKey != "" {
		ingestOpts.Patents = ingest.NewPatentClient(cfg.SerpAPIBaseURL, cfg.SerpAPIKey, nil, cfg.SerpAPIInterval)
	} else {
		logger.Warn("SERPAPI_KEY not set, patents are skipped")
	}

	fetcher := ingest.NewArxivClient(cfg.ArxivBaseURL, nil, cfg.ArxivInterval)
	ingester := ingest.New(repo, fetcher, s, ingestOpts, logger)

	if once || cfg.Schedule == "" {
		_, err := ingester.Run(ctx)
		return err
	}

	sched := ingest.NewScheduler(ctx, cfg.Schedule, ingester, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	logger.Info("ingest scheduled", "schedule", cfg.Schedule, "domains", len(sources.Domains))

	<-ctx.Done()
	logger.Info("shutdown requested")
	sched.Stop()
	return nil
}
