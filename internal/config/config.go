// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Session store backends supported by the web client.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Base holds settings shared by every binary.
type Base struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// IsDevelopment returns true if running in development mode.
func (b *Base) IsDevelopment() bool {
	return b.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (b *Base) IsProduction() bool {
	return b.AppEnv == "production"
}

// Web holds configuration for the web client.
type Web struct {
	Base

	AppPort int `env:"APP_PORT" envDefault:"5173"`

	// Backend API the client talks to.
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// Session storage: "memory" keeps identity in process only, "redis" survives restarts.
	SessionStore  string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	RedisURL      string        `env:"REDIS_URL"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 64KB, forms only)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Web) Validate() error {
	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionStoreRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// API holds configuration for the backend API server.
type API struct {
	Base

	AppPort int `env:"APP_PORT" envDefault:"8000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis), optional. Enables domain catalog caching when set.
	RedisURL string `env:"REDIS_URL"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Comma-separated list of allowed origins.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *API) GetCORSAllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// Ingest holds configuration for the ingestion job.
type Ingest struct {
	Base

	DatabaseURL string `env:"DATABASE_URL,required"`

	// YAML file mapping domain names to arXiv categories.
	SourcesFile string `env:"SOURCES_FILE" envDefault:"sources.yaml"`

	// Cron spec; empty means run once and exit.
	Schedule string `env:"INGEST_SCHEDULE"`

	ArxivBaseURL  string        `env:"ARXIV_BASE_URL" envDefault:"http://export.arxiv.org/api/query"`
	ArxivInterval time.Duration `env:"ARXIV_INTERVAL" envDefault:"3s"`
	MaxResults    int           `env:"MAX_RESULTS" envDefault:"50"`

	// Optional; patents are only fetched when SERPAPI_KEY is set.
	SerpAPIKey      string        `env:"SERPAPI_KEY"`
	SerpAPIBaseURL  string        `env:"SERPAPI_BASE_URL" envDefault:"https://serpapi.com/search"`
	SerpAPIInterval time.Duration `env:"SERPAPI_INTERVAL" envDefault:"1s"`

	// Optional; without it summaries fall back to a truncated abstract.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// Optional; when set the API's cached domain catalog is dropped after each run.
	RedisURL string `env:"REDIS_URL"`
}

// LoadWeb parses environment variables into a Web config.
func LoadWeb() (*Web, error) {
	cfg := &Web{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadAPI parses environment variables into an API config.
// Returns an error if required variables are missing.
func LoadAPI() (*API, error) {
	cfg := &API{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadIngest parses environment variables into an Ingest config.
func LoadIngest() (*Ingest, error) {
	cfg := &Ingest{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
