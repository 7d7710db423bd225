package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := repository.HealthCheck(ctx, db, 5*time.Second); err != nil {
		logger.Error("health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("audit store health OK")

	jobs := repository.NewJobStore(db, logger)
	recent, err := jobs.Recent(ctx, 10)
	if err != nil {
		logger.Error("listing recent jobs failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("recent jobs: %d\n", len(recent))
	for _, j := range recent {
		finished := "-"
		if j.FinishedAt != nil {
			finished = j.FinishedAt.UTC().Format(time.RFC3339)
		}
		fmt.Printf("  %s  %-7s  %-20s  %s  %s\n",
			j.ID, j.Status, j.ParsedBy, j.StartedAt.UTC().Format(time.RFC3339), finished)
	}
}
