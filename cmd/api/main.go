// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yomira directory HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and Redis.
//  4. Run database migrations (idempotent).
//  5. Build the file store and image processor.
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// With -migrate-down, step 4 rolls back every migration instead and the command exits.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/yomira-directory/internal/api"
	"github.com/taibuivan/yomira-directory/internal/core/company"
	"github.com/taibuivan/yomira-directory/internal/core/media"
	"github.com/taibuivan/yomira-directory/internal/core/tag"
	"github.com/taibuivan/yomira-directory/internal/core/taxonomy"
	"github.com/taibuivan/yomira-directory/internal/platform/config"
	"github.com/taibuivan/yomira-directory/internal/platform/constants"
	"github.com/taibuivan/yomira-directory/internal/platform/filestore"
	"github.com/taibuivan/yomira-directory/internal/platform/imageproc"
	"github.com/taibuivan/yomira-directory/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-directory/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-directory/internal/platform/redis"
	"github.com/taibuivan/yomira-directory/internal/platform/sec"
	"github.com/taibuivan/yomira-directory/pkg/slice"
)

func main() {
	migrateDown := flag.Bool("migrate-down", false, "roll back every migration and exit")
	flag.Parse()

	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Yomira] service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	slugLocker := redisstore.NewLocker(rdb, cfg.SlugLockTTL)

	// ── 5. Migrations ─────────────────────────────────────────────────────
	if *migrateDown {
		must(log, migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, log), "roll back migrations")
		log.Info("migrations_rolled_back")
		return
	}
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token verification ─────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Storage & Images ───────────────────────────────────────────────
	files, uploads, err := buildFileStore(startupCtx, cfg.Storage())
	must(log, err, "initialize file store")

	formats := slice.Map(cfg.ImageFormats(), func(format config.ImageFormat) imageproc.Format {
		return imageproc.Format{Name: format.Name, Width: format.Width}
	})
	processor, err := imageproc.NewProcessor(formats, files)
	must(log, err, "initialize image processor")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	mediaService := media.NewService(media.NewPostgresRepository(pool), files, processor, log)
	taxonomyService := taxonomy.NewService(taxonomy.NewPostgresRepository(pool), mediaService, slugLocker, log)
	tagService := tag.NewService(tag.NewPostgresRepository(pool), slugLocker, log)
	companyService := company.NewService(company.NewPostgresRepository(pool), mediaService, taxonomyService, slugLocker, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Uploads:   uploads,
		Media:     media.NewHandler(mediaService, cfg.UploadMaxBytes),
		Taxonomy:  taxonomy.NewHandler(taxonomyService, cfg.UploadMaxBytes),
		Tag:       tag.NewHandler(tagService),
		Company:   company.NewHandler(companyService, cfg.UploadMaxBytes),
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// buildFileStore selects the storage backend and the handler serving stored files.
func buildFileStore(ctx context.Context, storage config.StorageConfig) (*filestore.Store, http.Handler, error) {
	switch storage.Driver {
	case config.StorageDriverS3:
		client, err := filestore.DialS3(ctx, storage.S3Region, storage.S3Endpoint)
		if err != nil {
			return nil, nil, err
		}
		store := filestore.New(filestore.NewS3Backend(client, storage.S3Bucket, ""), storage.PublicPrefix)
		return store, store.Handler(), nil

	case config.StorageDriverLocal:
		backend, err := filestore.NewDiskBackend(storage.Root)
		if err != nil {
			return nil, nil, err
		}
		return filestore.New(backend, storage.PublicPrefix), http.FileServer(http.Dir(storage.Root)), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
