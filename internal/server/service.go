// Package server exposes the extraction pipeline over HTTP: a raw-body
// endpoint, a multipart endpoint, service info and the job audit views.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/export"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/pipeline"
	"github.com/clearscan/doc-extractor/internal/repository"
)

// ServiceName and Version are reported by /api/info.
const (
	ServiceName = "doc-extractor"
	Version     = "0.9.0"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing; larger
// uploads spill to disk.
const maxMultipartMemory = 32 << 20

type Service struct {
	proc     *pipeline.Processor
	jobs     repository.JobStore // nil disables auditing
	exporter *export.Service     // nil when jobs is nil
	logger   *zap.Logger
}

func NewService(proc *pipeline.Processor, jobs repository.JobStore, exporter *export.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{proc: proc, jobs: jobs, exporter: exporter, logger: logger}
}

// responseContent is the wire envelope around a processing result.
type responseContent struct {
	Result pipeline.Result `json:"result"`
}

func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Post("/process", s.handleProcess)
		r.Post("/process_file", s.handleProcessFile)
		r.Get("/jobs", s.handleJobs)
		r.Get("/jobs/export", s.handleJobsExport)
	})
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleInfo(w http.ResponseWriter, _ *http.Request) {
	cfg := s.proc.Config()
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    ServiceName,
		"version": Version,
		"configuration": map[string]any{
			"pdf_min_doc_text_length":    cfg.PDFMinDocTextLength,
			"pdf_min_doc_byte_size":      cfg.PDFMinDocByteSize,
			"pdf_ocr_only_strategy":      cfg.PDFOCROnlyStrategy,
			"use_legacy_single_page_ocr": cfg.UseLegacyOCRParserForSinglePageDocuments,
			"ocr_language":               cfg.OCRLanguage,
		},
	})
}

// handleProcess extracts a document sent as the raw request body.
func (s *Service) handleProcess(w http.ResponseWriter, r *http.Request) {
	s.processDocument(w, r, "stream", r.Body)
}

// handleProcessFile extracts a document uploaded as the multipart field "file".
func (s *Service) handleProcessFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.logger.Warn("invalid multipart request", zap.Error(err))
		http.Error(w, `{"error":"invalid multipart request"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error":"multipart field 'file' is required"}`, http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	s.processDocument(w, r, header.Filename, file)
}

func (s *Service) processDocument(w http.ResponseWriter, r *http.Request, docName string, body io.Reader) {
	jobID := uuid.New()
	ctx := common.WithRequestID(r.Context(), jobID.String())
	ctx = common.WithDocName(ctx, docName)

	if s.jobs != nil {
		_ = s.jobs.Start(ctx, jobID, docName, "")
	}

	result := s.proc.Process(ctx, body)

	if s.jobs != nil {
		if result.Success {
			_ = s.jobs.FinishOK(ctx, jobID, result.Metadata[extract.MetaKeyParsedBy], len(result.Text))
		} else {
			msg := ""
			if result.Error != nil {
				msg = *result.Error
			}
			_ = s.jobs.FinishFailure(ctx, jobID, msg)
		}
	}

	// a failed extraction answers 400 with the failed result in the body
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	s.logger.Info("document processed",
		zap.String("job_id", jobID.String()),
		zap.String("doc", docName),
		zap.Bool("success", result.Success),
		zap.Int("status", status),
	)
	writeJSON(w, status, responseContent{Result: result})
}

func (s *Service) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		http.Error(w, `{"error":"job auditing is not enabled"}`, http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := s.jobs.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing jobs failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Service) handleJobsExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		http.Error(w, `{"error":"job auditing is not enabled"}`, http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	data, err := s.exporter.ExportJobsXLSX(r.Context(), limit)
	if err != nil {
		s.logger.Error("job export failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="processing-jobs.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
