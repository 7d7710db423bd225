package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/export"
	"github.com/clearscan/doc-extractor/internal/pipeline"
	"github.com/clearscan/doc-extractor/internal/repository"
	"github.com/clearscan/doc-extractor/internal/server"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	// Config
	cfg := common.LoadConfig()
	if path := os.Getenv("EXTRACTION_CONFIG_FILE"); path != "" {
		if err := common.ApplyConfigFile(cfg, path); err != nil {
			log.Fatalf("config file: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Optional job audit store
	var (
		jobs     repository.JobStore
		exporter *export.Service
	)
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, cfg.Database, nil)
		if err != nil {
			log.Fatalf("opening audit store: %v", err)
		}
		defer func() { _ = db.Close() }()

		if err := repository.HealthCheck(ctx, db, 3*time.Second); err != nil {
			log.Fatalf("audit store health failed: %v", err)
		}
		log.Infow("audit store health OK")

		jobs = repository.NewJobStore(db, nil)
		exporter = export.NewService(jobs, nil)
	}

	// Extraction pipeline + HTTP service
	proc := pipeline.NewProcessor(cfg.Extraction, cfg.Tools, nil, nil)
	svc := server.NewService(proc, jobs, exporter, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("HTTP serving on %s", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	log.Info("stopped.")
}
