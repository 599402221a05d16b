// Package app wires configuration, storage, the search engine, the ERP
// syncer, and the HTTP surface into one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vuquimar/api-rei-do-pano/internal/cache"
	"github.com/vuquimar/api-rei-do-pano/internal/config"
	handler "github.com/vuquimar/api-rei-do-pano/internal/handler/http"
	"github.com/vuquimar/api-rei-do-pano/internal/repository"
	"github.com/vuquimar/api-rei-do-pano/internal/repository/memory"
	"github.com/vuquimar/api-rei-do-pano/internal/repository/postgres"
	"github.com/vuquimar/api-rei-do-pano/internal/search"
	"github.com/vuquimar/api-rei-do-pano/internal/service"
	"github.com/vuquimar/api-rei-do-pano/internal/tga"
	"github.com/vuquimar/api-rei-do-pano/migrations"
	"github.com/vuquimar/api-rei-do-pano/pkg/database"
	"github.com/vuquimar/api-rei-do-pano/pkg/health"
	"github.com/vuquimar/api-rei-do-pano/pkg/httpclient"
	"github.com/vuquimar/api-rei-do-pano/pkg/tracing"
)

const serviceName = "search-api"

// catalogStore is what the app needs from a storage backend: search reads
// plus sync writes.
type catalogStore interface {
	repository.CatalogRepository
	repository.SyncRepository
}

// App wires together all dependencies and runs the search API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool // nil on the memory backend
	redis          *redis.Client // nil when the cache is disabled
	store          catalogStore
	syncer         *tga.Syncer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates the application with all dependencies wired.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	var store catalogStore
	var pool *pgxpool.Pool
	switch cfg.StorageBackend {
	case "memory":
		store = memory.New()
		logger.Info("using in-memory catalog store")
	default:
		pgCfg := database.PostgresConfig{
			Host:            cfg.PostgresHost,
			Port:            cfg.PostgresPort,
			User:            cfg.PostgresUser,
			Password:        cfg.PostgresPass,
			DBName:          cfg.PostgresDB,
			SSLMode:         cfg.PostgresSSL,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
			MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
		}

		pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		database.RegisterPoolMetrics(pool, serviceName)

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		store = postgres.NewCatalogRepository(pool)
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}

	// The cache is an optimization, not a dependency: when Redis is down the
	// service starts anyway and every search hits the engine.
	var resultCache service.ResultCache
	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, serving without result cache",
				slog.String("error", err.Error()),
			)
		} else {
			redisClient = client
			resultCache = cache.NewSearchCache(client, cfg.CacheTTL)
			healthHandler.Register("redis", func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			})
			logger.Info("result cache enabled",
				slog.String("addr", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)),
				slog.Duration("ttl", cfg.CacheTTL),
			)
		}
	}

	engine := search.NewEngine(store, search.Config{
		Weights: search.Weights{
			FullText:       cfg.FullTextWeight,
			AllTerms:       cfg.AllTermsWeight,
			Similarity:     cfg.SimilarityWeight,
			RelevanceFloor: cfg.RelevanceFloor,
		},
		MaxPageSize: cfg.MaxPageSize,
		NativeRank:  cfg.NativeRank,
	}, logger)

	searchService := service.NewSearchService(engine, resultCache, logger)

	erpHTTP := httpclient.DefaultConfig()
	erpHTTP.Timeout = cfg.TGATimeout
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(erpHTTP),
		httpclient.DefaultCircuitBreakerConfig("tga"),
		logger,
	)
	tgaClient := tga.NewClient(breaker, tga.Config{
		BaseURL:   cfg.TGABaseURL,
		APIKey:    cfg.TGAAPIKey,
		PageLimit: cfg.TGAPageLimit,
	})
	syncer := tga.NewSyncer(tgaClient, store, logger)

	router := handler.NewRouter(searchService, healthHandler, handler.RouterConfig{
		ServiceName:     serviceName,
		APIKeys:         cfg.APIKeys,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultPageSize: cfg.DefaultPageSize,
		EnablePprof:     cfg.PprofEnabled,
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		store:          store,
		syncer:         syncer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the sync scheduler, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.cfg.SyncEnabled {
		go a.runSyncScheduler(ctx)
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// runSyncScheduler keeps the catalog fresh: an immediate full pull when the
// store is empty (first boot), then an incremental pull every SyncInterval.
func (a *App) runSyncScheduler(ctx context.Context) {
	count, err := a.store.Count(ctx)
	switch {
	case err != nil:
		a.logger.Error("catalog count failed, skipping initial sync",
			slog.String("error", err.Error()),
		)
	case count == 0:
		a.logger.Info("catalog empty, running initial full sync")
		a.runSync(ctx, true)
	}

	ticker := time.NewTicker(a.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runSync(ctx, false)
		}
	}
}

// runSync executes one sync run. Failures are logged, never fatal: the next
// tick re-covers the window because checkpoints only advance on success.
func (a *App) runSync(ctx context.Context, full bool) {
	if _, err := a.syncer.Run(ctx, full); err != nil {
		a.logger.Error("catalog sync failed",
			slog.Bool("full", full),
			slog.String("error", err.Error()),
		)
	}
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush spans from drained requests)
// 3. Redis client
// 4. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
