package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clearscan/doc-extractor/constants"
)

// Job is one row of the processing audit log: a single process call.
type Job struct {
	ID         uuid.UUID
	DocName    string
	Format     string
	Status     constants.JobStatus
	ParsedBy   string
	Error      string
	TextBytes  int64
	StartedAt  time.Time
	FinishedAt *time.Time
}

// JobStore records processing jobs. All methods are best-effort from the
// caller's point of view: auditing must never fail a document request.
type JobStore interface {
	Start(ctx context.Context, id uuid.UUID, docName, format string) error
	FinishOK(ctx context.Context, id uuid.UUID, parsedBy string, textBytes int) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Recent(ctx context.Context, limit int) ([]Job, error)
}

type jobStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewJobStore(db *sql.DB, log *slog.Logger) JobStore {
	if log == nil {
		log = slog.Default()
	}
	return &jobStore{db: db, log: log}
}

func (s *jobStore) Start(ctx context.Context, id uuid.UUID, docName, format string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processing_job (id, doc_name, format, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id.String(), docName, format, string(constants.JobStatusRunning), time.Now().UTC())
	if err != nil {
		s.log.Error("processing_job start failed", "job_id", id, "err", err)
		return err
	}
	s.log.Info("processing_job started", "job_id", id, "doc", docName, "format", format)
	return nil
}

func (s *jobStore) FinishOK(ctx context.Context, id uuid.UUID, parsedBy string, textBytes int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE processing_job SET status = $1, parsed_by = $2, text_bytes = $3, finished_at = $4 WHERE id = $5`,
		string(constants.JobStatusOK), parsedBy, textBytes, time.Now().UTC(), id.String())
	if err != nil {
		s.log.Error("processing_job finish(OK) failed", "job_id", id, "err", err)
		return err
	}
	s.log.Info("processing_job finished (OK)", "job_id", id, "parsed_by", parsedBy)
	return nil
}

func (s *jobStore) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE processing_job SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), id.String())
	if err != nil {
		s.log.Error("processing_job finish(FAILED) failed", "job_id", id, "err", err)
		return err
	}
	s.log.Warn("processing_job finished (FAILED)", "job_id", id, "error", message)
	return nil
}

func (s *jobStore) Recent(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_name, format, status, parsed_by, error, text_bytes, started_at, finished_at
		 FROM processing_job ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		var (
			j        Job
			idStr    string
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&idStr, &j.DocName, &j.Format, &status, &j.ParsedBy, &j.Error, &j.TextBytes, &j.StartedAt, &finished); err != nil {
			return nil, err
		}
		if id, err := uuid.Parse(idStr); err == nil {
			j.ID = id
		}
		j.Status = constants.JobStatus(status)
		if finished.Valid {
			t := finished.Time
			j.FinishedAt = &t
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
