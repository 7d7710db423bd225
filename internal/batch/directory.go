// Package batch walks a directory tree and runs every matching document
// through the extraction pipeline.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/pipeline"
	"github.com/clearscan/doc-extractor/internal/repository"
)

type FileResult struct {
	Path     string          `json:"path"`
	JobID    string          `json:"job_id,omitempty"`
	ParsedBy string          `json:"parsed_by,omitempty"`
	Result   pipeline.Result `json:"result"`
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Runner drives directory processing. Jobs may be nil when auditing is off.
// Workers bounds the concurrent extraction fan-out; <= 0 means sequential.
type Runner struct {
	Proc    *pipeline.Processor
	Jobs    repository.JobStore
	Logger  *slog.Logger
	Workers int
}

func NewRunner(proc *pipeline.Processor, jobs repository.JobStore, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Proc: proc, Jobs: jobs, Logger: logger, Workers: 1}
}

// ProcessDirectory walks root, filters by includeExts (or defaults), skips
// hidden entries if requested, and processes each matched file through the
// pipeline. Results come back in walk order regardless of worker count.
func (b *Runner) ProcessDirectory(ctx context.Context, root string, includeExts []string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = constants.AllowedExtensions
	} else {
		for _, e := range includeExts {
			e = constants.NormalizeExt(strings.TrimSpace(e))
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var stats DirStats
	var matched []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			b.Logger.Warn("walk error", "path", path, "error", walkErr)
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		matched = append(matched, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}
	stats.Matched = uint32(len(matched))

	results := b.processAll(ctx, matched)
	for _, fr := range results {
		if fr.Result.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	return results, stats, nil
}

// processAll fans matched paths out to a bounded worker pool. Each slot in
// the result slice is owned by exactly one worker, so no locking is needed.
func (b *Runner) processAll(ctx context.Context, paths []string) []FileResult {
	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]FileResult, len(paths))
	if workers <= 1 {
		for i, p := range paths {
			results[i] = b.processFile(ctx, p)
		}
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.processFile(ctx, paths[i])
			}
		}()
	}
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			msg := "Exception caught while processing the document: " + ctx.Err().Error()
			for j := i; j < len(paths); j++ {
				results[j] = FileResult{Path: paths[j], Result: pipeline.Result{Success: false, Error: &msg}}
			}
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (b *Runner) processFile(ctx context.Context, path string) FileResult {
	jobID := uuid.New()
	ctx = common.WithRequestID(ctx, jobID.String())
	ctx = common.WithDocName(ctx, path)

	f, err := os.Open(path)
	if err != nil {
		msg := "Exception caught while processing the document: " + err.Error()
		return FileResult{Path: path, Result: pipeline.Result{Success: false, Error: &msg}}
	}
	defer func() { _ = f.Close() }()

	if b.Jobs != nil {
		_ = b.Jobs.Start(ctx, jobID, path, string(formatForPath(path)))
	}

	result := b.Proc.Process(ctx, f)
	parsedBy := result.Metadata[extract.MetaKeyParsedBy]

	if b.Jobs != nil {
		if result.Success {
			_ = b.Jobs.FinishOK(ctx, jobID, parsedBy, len(result.Text))
		} else {
			msg := ""
			if result.Error != nil {
				msg = *result.Error
			}
			_ = b.Jobs.FinishFailure(ctx, jobID, msg)
		}
	}

	return FileResult{Path: path, JobID: jobID.String(), ParsedBy: parsedBy, Result: result}
}

func formatForPath(path string) constants.Format {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "pdf":
		return constants.PDF
	case "jpg", "jpeg", "png", "tif", "tiff":
		return constants.IMAGE
	case "xlsx":
		return constants.SPREADSHEET
	case "docx":
		return constants.WORD
	case "html":
		return constants.HTML
	case "zip":
		return constants.ARCHIVE
	default:
		return constants.TEXT
	}
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
