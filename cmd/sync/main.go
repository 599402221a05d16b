// Command sync runs one catalog pull from the TGA ERP and exits. Operators
// use it for the first import and to re-cover gaps after ERP outages; cron
// can drive it on deployments that disable the in-process scheduler.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vuquimar/api-rei-do-pano/internal/config"
	"github.com/vuquimar/api-rei-do-pano/internal/repository/postgres"
	"github.com/vuquimar/api-rei-do-pano/internal/tga"
	"github.com/vuquimar/api-rei-do-pano/migrations"
	"github.com/vuquimar/api-rei-do-pano/pkg/database"
	"github.com/vuquimar/api-rei-do-pano/pkg/httpclient"
	"github.com/vuquimar/api-rei-do-pano/pkg/logger"
)

func main() {
	full := flag.Bool("full", false, "ignore the sync checkpoint and pull the whole catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("catalog-sync", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, *full); err != nil {
		log.Error("sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, full bool) error {
	// A sync into the memory backend would die with the process.
	if cfg.StorageBackend != "postgres" {
		return fmt.Errorf("catalog sync requires the postgres backend, got %q", cfg.StorageBackend)
	}

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
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	erpHTTP := httpclient.DefaultConfig()
	erpHTTP.Timeout = cfg.TGATimeout
	client := tga.NewClient(httpclient.New(erpHTTP), tga.Config{
		BaseURL:   cfg.TGABaseURL,
		APIKey:    cfg.TGAAPIKey,
		PageLimit: cfg.TGAPageLimit,
	})

	syncer := tga.NewSyncer(client, postgres.NewCatalogRepository(pool), log)
	if _, err := syncer.Run(ctx, full); err != nil {
		return err
	}
	return nil
}
