package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <document-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if cfgPath := os.Getenv("EXTRACTION_CONFIG_FILE"); cfgPath != "" {
		if err := common.ApplyConfigFile(cfg, cfgPath); err != nil {
			logger.Error("config file", "path", cfgPath, "error", err)
			os.Exit(1)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("open document", "path", path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	ctx = common.WithDocName(ctx, path)

	proc := pipeline.NewProcessor(cfg.Extraction, cfg.Tools, nil, logger)

	start := time.Now()
	result := proc.Process(ctx, f)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}

	if !result.Success {
		logger.Error("extraction failed", "path", path, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction OK",
		"path", path,
		"bytes", len(result.Text),
		"parsed_by", result.Metadata["X-Parsed-By"],
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
