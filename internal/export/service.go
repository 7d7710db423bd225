package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/clearscan/doc-extractor/internal/repository"
)

// Service is a tiny façade over the job store that produces XLSX bytes for
// audit exports.
type Service struct {
	jobs   repository.JobStore
	logger *slog.Logger
}

func NewService(jobs repository.JobStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobsXLSX returns an XLSX workbook (as bytes) with the most recent
// processing jobs, newest first.
func (s *Service) ExportJobsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Processing Jobs"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultSheet, _ := f.GetSheetIndex("Sheet1")
	if defaultSheet != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Job ID",
		"Document",
		"Format",
		"Status",
		"Parsed By",
		"Text Bytes",
		"Error",
		"Started At",
		"Finished At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, j := range jobs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, j.ID.String())
		write(2, j.DocName)
		write(3, j.Format)
		write(4, string(j.Status))
		write(5, j.ParsedBy)
		write(6, j.TextBytes)
		write(7, j.Error)
		write(8, j.StartedAt.UTC().Format(time.RFC3339))
		if j.FinishedAt != nil {
			write(9, j.FinishedAt.UTC().Format(time.RFC3339))
		}
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 38) // job id
	_ = f.SetColWidth(sheet, "B", "B", 32) // document
	_ = f.SetColWidth(sheet, "G", "G", 48) // error
	_ = f.SetColWidth(sheet, "H", "I", 22) // timestamps

	out, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("exported processing jobs",
		"rows", len(jobs),
		"bytes", out.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out.Bytes(), nil
}
