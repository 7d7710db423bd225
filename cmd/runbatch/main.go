package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/clearscan/doc-extractor/internal/batch"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/pipeline"
	"github.com/clearscan/doc-extractor/internal/repository"
)

func main() {
	_ = godotenv.Load()

	var (
		dir        = flag.String("dir", "", "directory to scan (required)")
		out        = flag.String("out", "", "write per-file results as JSON to this path (default: stdout)")
		exts       = flag.String("ext", "", "comma separated extensions to include (default: all supported)")
		keepHidden = flag.Bool("keep-hidden", false, "do not skip hidden files and directories")
		audit      = flag.Bool("audit", false, "record jobs in the audit store (requires DB_URL)")
		workers    = flag.Int("workers", 1, "number of concurrent extraction workers")
		timeout    = flag.Duration("timeout", 2*time.Hour, "overall processing deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *dir == "" {
		logger.Error("missing required flag", "flag", "-dir")
		flag.Usage()
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if path := os.Getenv("EXTRACTION_CONFIG_FILE"); path != "" {
		if err := common.ApplyConfigFile(cfg, path); err != nil {
			logger.Error("config file", "path", path, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var jobs repository.JobStore
	if *audit {
		if cfg.Database.DSN == "" {
			logger.Error("-audit requires DB_URL")
			os.Exit(1)
		}
		db, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("opening audit store", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		jobs = repository.NewJobStore(db, logger)
	}

	var includeExts []string
	if *exts != "" {
		includeExts = strings.Split(*exts, ",")
	}

	proc := pipeline.NewProcessor(cfg.Extraction, cfg.Tools, nil, logger)
	runner := batch.NewRunner(proc, jobs, logger)
	runner.Workers = *workers

	start := time.Now()
	results, stats, err := runner.ProcessDirectory(ctx, *dir, includeExts, !*keepHidden)
	if err != nil {
		logger.Error("directory processing failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	dest := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("create output file", "path", *out, "error", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		dest = f
	}
	enc := json.NewEncoder(dest)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.Error("encode results", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"dir", *dir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
