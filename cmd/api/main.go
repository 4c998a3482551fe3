//	@title			Geotechnical Data API
//	@version		1.0
//	@description	Raw dataset ingestion for the geotechnical hazard platform: upload, archive, listing and processing pipeline control.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token with role=admin. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/geohazard/service/internal/catalog"
	"github.com/geohazard/service/internal/config"
	"github.com/geohazard/service/internal/db"
	"github.com/geohazard/service/internal/history"
	"github.com/geohazard/service/internal/ingest"
	"github.com/geohazard/service/internal/logger"
	"github.com/geohazard/service/internal/metrics"
	"github.com/geohazard/service/internal/pipeline"
	"github.com/geohazard/service/internal/storage"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		fatal("object storage init failed", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer, err := metrics.NewPrometheusObserver("", registry)
	if err != nil {
		fatal("metrics init failed", err)
	}

	ingestCfg := ingest.Config{
		Bucket:        cfg.StorageBucket,
		RawFolder:     cfg.RawFolder,
		ArchiveFolder: cfg.ArchiveFolder,
		RawFileName:   cfg.RawFileName,
		StoreTimeout:  cfg.StorageTimeout,
		LockTimeout:   cfg.LockTimeout,
	}
	opts := []ingest.Option{ingest.WithLogger(log), ingest.WithObserver(observer)}

	// Optional database: ingestion history and a cross-replica upload lock.
	var historyHandler *history.Handler
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, 30*time.Second)
		if err != nil {
			fatal("database connection failed", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			fatal("database migration failed", err)
		}

		historyRepo := history.NewRepository(pool)
		historyHandler = history.NewHandler(historyRepo)
		opts = append(opts,
			ingest.WithRecorder(historyRepo),
			ingest.WithLocker(db.NewAdvisoryLocker(pool)),
		)
	} else {
		log.Info("DATABASE_URL not set, ingestion history disabled and uploads serialised in-process")
	}

	// Wire dependencies: store → service → handler
	pipelineClient := pipeline.NewClient(cfg.PipelineURL, cfg.PipelineTimeout)
	ingestSvc := ingest.NewService(ingestCfg, store, pipelineClient, opts...)

	a := &app{
		cfg:      cfg,
		store:    store,
		registry: registry,
		ingest:   ingest.NewHandler(ingestSvc, cfg.MaxUploadBytes),
		catalog:  catalog.NewHandler(catalog.NewService(store, cfg.StorageTimeout)),
		pipeline: pipeline.NewHandler(pipelineClient, ingestCfg.CanonicalPath(), cfg.StorageBucket),
		history:  historyHandler,
		log:      log,
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     a.routes(),
		ReadTimeout: 60 * time.Second,
		// Upload responses wait for storage and the pipeline trigger.
		WriteTimeout: cfg.LockTimeout + 3*cfg.StorageTimeout + cfg.PipelineTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv, "storage", cfg.StorageBackend, "bucket", cfg.StorageBucket)
		log.Info("swagger UI available", "url", "http://localhost:"+cfg.Port+"/swagger/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	<-quit
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		return
	}

	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		slog.Warn("using in-memory object storage, data is lost on restart")
		return storage.NewMemoryStore()
	case config.BackendMinio:
		return storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			UseSSL:    cfg.StorageUseSSL,
		})
	default:
		return nil, errors.New("unknown STORAGE_BACKEND " + cfg.StorageBackend)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
