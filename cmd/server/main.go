package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jobextract/internal/checkpoint"
	"jobextract/internal/config"
	"jobextract/internal/domain"
	"jobextract/internal/email/noop"
	"jobextract/internal/email/ses"
	"jobextract/internal/handler"
	"jobextract/internal/ingest"
	"jobextract/internal/logger"
	"jobextract/internal/metrics"
	"jobextract/internal/middleware"
	"jobextract/internal/port"
	"jobextract/internal/repository/postgres"
	"jobextract/internal/router"
	"jobextract/internal/service"
	"jobextract/internal/sink"
	s3storage "jobextract/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	log := logger.WithComponent("server")
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	extractionSvc, err := service.NewExtractionServiceFromConfig(cfg.Extract, cfg.Input.MaxDocumentBytes(), m, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction: %w", err)
	}

	// Postgres is only needed by the postgres sink and the records API.
	var repo port.JobPostingRepository
	if hasSink(cfg.Sink.Kinds, domain.SinkPostgres) {
		var db *sqlx.DB
		db, err = postgres.NewDB(&cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo = postgres.NewJobPostingRepo(db)
	}

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Input sources
	var sources ingest.MultiSource
	var watchRoots []string
	if len(cfg.Input.TextDirs) > 0 || len(cfg.Input.JSONDirs) > 0 {
		dirs := ingest.NewDirSource(cfg.Input.TextDirs, cfg.Input.JSONDirs, nil)
		sources = append(sources, dirs)
		watchRoots = dirs.Roots()
	}
	if cfg.S3.Enabled() {
		sources = append(sources, s3storage.NewSource(storage, cfg.S3.Bucket, cfg.S3.TextPrefix, cfg.S3.JSONPrefix))
	}

	checkpoints, err := openCheckpoints(ctx, &cfg.Checkpoint)
	if err != nil {
		return err
	}
	defer checkpoints.Close()

	reports, err := newReportSender(ctx, &cfg.Email)
	if err != nil {
		return err
	}

	sinks, err := sink.Build(ctx, cfg.Sink.Kinds, sink.Deps{
		Config:  cfg,
		Repo:    repo,
		Storage: storage,
		Metrics: m,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sinks: %w", err)
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Error("closing sinks", "error", err)
		}
	}()

	worker := service.NewIngestWorker(sources, checkpoints, extractionSvc, sinks, reports, m, nil, service.IngestConfig{
		TriggerInterval:  cfg.Input.TriggerInterval,
		InitialScan:      cfg.Input.InitialScan,
		Concurrency:      cfg.Input.Concurrency,
		MaxDocumentBytes: cfg.Input.MaxDocumentBytes(),
	})

	var triggers <-chan []string
	if len(watchRoots) > 0 {
		triggers, _, err = ingest.Watch(ctx, ingest.WatchConfig{Roots: watchRoots, Debounce: cfg.Input.Debounce})
		if err != nil {
			log.Warn("file watching disabled", "error", err)
			triggers = nil
		}
	}

	var wg sync.WaitGroup
	if len(sources) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx, triggers)
		}()
	} else {
		log.Warn("no input configured; only the extraction API is available")
	}

	// HTTP API
	var validator *middleware.TokenValidator
	if cfg.Auth.Secret != "" {
		validator = middleware.NewTokenValidator(cfg.Auth.Secret, cfg.Auth.Issuer)
	}
	var recordsH *handler.RecordsHandler
	if repo != nil {
		recordsH = handler.NewRecordsHandler(repo)
	}
	r := router.Setup(validator, m, nil,
		handler.NewExtractHandler(extractionSvc, int64(cfg.Input.MaxDocumentBytes())),
		recordsH,
		handler.NewStatsHandler(worker),
		handler.NewHealthHandler(repo),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Server.Port, "sinks", sinks.Kinds())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	wg.Wait()
	return nil
}

func hasSink(kinds []domain.SinkKind, want domain.SinkKind) bool {
	for _, k := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func openCheckpoints(ctx context.Context, cfg *config.CheckpointConfig) (port.CheckpointStore, error) {
	switch cfg.Driver {
	case "redis":
		store, err := checkpoint.NewRedis(ctx, checkpoint.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open redis checkpoints: %w", err)
		}
		return store, nil
	default:
		store, err := checkpoint.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoints at %s: %w", cfg.Path, err)
		}
		n, err := store.Count(ctx)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.WithComponent("server").Info("checkpoints opened", "path", cfg.Path, "files", n)
		return store, nil
	}
}

func newReportSender(ctx context.Context, cfg *config.EmailConfig) (port.ReportSender, error) {
	if cfg.Provider != "ses" {
		return noop.NewNoopSender(nil), nil
	}
	sender, err := ses.NewSESSender(ctx, cfg.Region, cfg.FromAddress, cfg.FromName, cfg.ToAddresses)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
	}
	return sender, nil
}
