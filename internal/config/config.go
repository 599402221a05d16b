package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/vuquimar/api-rei-do-pano/pkg/config"
)

// Config holds all configuration for the search API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	// Storage backend selection (postgres or memory). The memory backend
	// serves local hacking and CI without a database.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"reidopano"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"reidopano_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"reidopano"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"4"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis result cache. An empty host disables caching; searches then
	// always hit the engine.
	RedisHost     string        `env:"REDIS_HOST"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// API keys accepted on /tool_call. Empty means the endpoint rejects
	// every caller, which is the safe default for a misconfigured deploy.
	APIKeys []string `env:"API_KEYS" envSeparator:","`

	// TGA ERP upstream
	TGABaseURL   string        `env:"TGA_BASE_URL" envDefault:"http://localhost:9000"`
	TGAAPIKey    string        `env:"TGA_API_KEY"`
	TGAPageLimit int           `env:"TGA_PAGE_LIMIT" envDefault:"100"`
	TGATimeout   time.Duration `env:"TGA_TIMEOUT" envDefault:"30s"`

	// Catalog sync scheduling
	SyncEnabled  bool          `env:"SYNC_ENABLED" envDefault:"true"`
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"6h"`

	// Search tuning
	FullTextWeight   float64 `env:"SEARCH_FULLTEXT_WEIGHT" envDefault:"1.0"`
	AllTermsWeight   float64 `env:"SEARCH_ALL_TERMS_WEIGHT" envDefault:"2.0"`
	SimilarityWeight float64 `env:"SEARCH_SIMILARITY_WEIGHT" envDefault:"1.0"`
	RelevanceFloor   float64 `env:"SEARCH_RELEVANCE_FLOOR" envDefault:"0.05"`
	NativeRank       bool    `env:"SEARCH_NATIVE_RANK" envDefault:"false"`
	DefaultPageSize  int     `env:"DEFAULT_PAGE_SIZE" envDefault:"3"`
	MaxPageSize      int     `env:"MAX_PAGE_SIZE" envDefault:"50"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search-api config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StorageBackend != "postgres" && c.StorageBackend != "memory" {
		return fmt.Errorf("invalid STORAGE_BACKEND: %q (want postgres or memory)", c.StorageBackend)
	}
	if c.StorageBackend == "postgres" {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
	}
	if c.SyncEnabled && c.TGABaseURL == "" {
		return fmt.Errorf("TGA_BASE_URL is required when sync is enabled")
	}
	if c.TGAPageLimit < 1 {
		return fmt.Errorf("TGA_PAGE_LIMIT must be positive, got %d", c.TGAPageLimit)
	}
	if c.SyncEnabled && c.SyncInterval < time.Minute {
		return fmt.Errorf("SYNC_INTERVAL must be at least 1m, got %s", c.SyncInterval)
	}
	if c.FullTextWeight < 0 || c.AllTermsWeight < 0 || c.SimilarityWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.RelevanceFloor < 0 {
		return fmt.Errorf("SEARCH_RELEVANCE_FLOOR must be non-negative, got %f", c.RelevanceFloor)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize)
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE, got %d", c.DefaultPageSize)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// CacheEnabled reports whether a Redis result cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisHost != ""
}
