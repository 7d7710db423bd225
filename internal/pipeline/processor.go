// Package pipeline holds the adaptive extraction policy: the state machine
// that picks a parsing strategy per document, judges whether a first pass is
// good enough, and escalates to OCR when it is not.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/detect"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/parser"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// backendSet is one immutable snapshot of the configuration and the backends
// built from it. Reconfigure builds a fresh set and swaps the pointer;
// in-flight process calls keep the snapshot they started with.
type backendSet struct {
	cfg       common.ExtractionConfig
	generic   extract.Backend
	pdfText   extract.Backend
	pdfOCR    extract.Backend
	pdfLegacy extract.Backend // nil unless the legacy single-page mode is enabled
}

// Processor coordinates type detection, the two-pass PDF policy and result
// assembly. Safe for concurrent use; every call owns its buffer and metadata.
type Processor struct {
	logger   *slog.Logger
	backends atomic.Pointer[backendSet]
}

// NewProcessor builds the backends from the config snapshot. runner may be
// nil outside of tests.
func NewProcessor(cfg common.ExtractionConfig, tools common.ToolsConfig, runner parser.Runner, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{logger: logger}
	p.backends.Store(buildBackends(cfg, tools, runner, logger))
	return p
}

// NewProcessorWithBackends wires explicit backend implementations. Used by
// tests; pdfLegacy may be nil.
func NewProcessorWithBackends(cfg common.ExtractionConfig, generic, pdfText, pdfOCR, pdfLegacy extract.Backend, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{logger: logger}
	p.backends.Store(&backendSet{
		cfg:       cfg,
		generic:   generic,
		pdfText:   pdfText,
		pdfOCR:    pdfOCR,
		pdfLegacy: pdfLegacy,
	})
	return p
}

func buildBackends(cfg common.ExtractionConfig, tools common.ToolsConfig, runner parser.Runner, logger *slog.Logger) *backendSet {
	bs := &backendSet{
		cfg:     cfg,
		generic: parser.NewGeneric(cfg, tools, runner, logger),
		pdfText: parser.NewPDFText(tools, runner, logger),
		pdfOCR:  parser.NewPDFOCR(cfg, tools, runner, logger),
	}
	if cfg.UseLegacyOCRParserForSinglePageDocuments {
		bs.pdfLegacy = parser.NewPDFLegacySinglePage(cfg, tools, runner, logger)
	}
	return bs
}

// Reconfigure rebuilds all backends from a new config snapshot and publishes
// them atomically. Live backend state is never mutated in place.
func (p *Processor) Reconfigure(cfg common.ExtractionConfig, tools common.ToolsConfig, runner parser.Runner) {
	p.backends.Store(buildBackends(cfg, tools, runner, p.logger))
	p.logger.Info("extraction backends reconfigured",
		"pdf_min_doc_text_length", cfg.PDFMinDocTextLength,
		"pdf_min_doc_byte_size", cfg.PDFMinDocByteSize,
		"ocr_only_strategy", cfg.PDFOCROnlyStrategy,
		"legacy_single_page", cfg.UseLegacyOCRParserForSinglePageDocuments,
	)
}

// Config returns the currently published config snapshot.
func (p *Processor) Config() common.ExtractionConfig {
	return p.backends.Load().cfg
}

// Process buffers r (bounded by MaxDocBytes) and runs the extraction policy.
// All failures come back as a failed Result; nothing is re-thrown to callers.
func (p *Processor) Process(ctx context.Context, r io.Reader) Result {
	bs := p.backends.Load()
	buf, err := streambuf.New(r, bs.cfg.MaxDocBytes)
	if err != nil {
		p.logger.Error("buffering document failed", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return assembleFailure(err)
	}
	return p.ProcessBuffer(ctx, buf)
}

// ProcessBuffer runs the extraction policy over an already-buffered document.
//
// Non-PDF documents get a single generic pass. PDFs get a text-only pass
// first; the outcome is accepted iff enough text came out or the document was
// small enough that a short result is plausible. Otherwise the buffer is
// rewound and exactly one OCR backend produces the final outcome; the first
// pass is discarded entirely apart from its page count, which selects the
// legacy single-page backend when that mode is enabled.
func (p *Processor) ProcessBuffer(ctx context.Context, buf *streambuf.Buffer) Result {
	bs := p.backends.Load()
	reqID := common.RequestIDFromContext(ctx)

	if err := buf.Mark(); err != nil {
		p.logger.Error("stream is not replayable", "request_id", reqID, "error", err)
		return assembleFailure(err)
	}

	mediaType, err := detect.MediaType(buf)
	if err != nil {
		p.logger.Error("type detection failed", "request_id", reqID, "error", err)
		return assembleFailure(err)
	}

	if !detect.IsPDF(mediaType) {
		out, err := bs.generic.Parse(ctx, buf)
		if err != nil {
			p.logger.Error("generic parse failed", "request_id", reqID, "media_type", mediaType, "error", err)
			return assembleFailure(err)
		}
		out.Metadata = extract.TagProvenance(out.Metadata, bs.generic.ID())
		p.logger.Info("document processed", "request_id", reqID, "parsed_by", bs.generic.ID(), "media_type", mediaType, "text_bytes", len(out.Text))
		return assembleSuccess(out)
	}

	// first pass: text layer only
	out, err := bs.pdfText.Parse(ctx, buf)
	if err != nil {
		p.logger.Error("pdf text pass failed", "request_id", reqID, "error", err)
		return assembleFailure(err)
	}

	// Accept when enough text was extracted, or when the document is small
	// enough that a short result is plausibly just a short document. A short
	// result out of a large stream strongly suggests image-only content.
	if len(out.Text) >= bs.cfg.PDFMinDocTextLength || out.BytesConsumed <= bs.cfg.PDFMinDocByteSize {
		out.Metadata = extract.TagProvenance(out.Metadata, bs.pdfText.ID())
		p.logger.Info("document processed", "request_id", reqID, "parsed_by", bs.pdfText.ID(), "pages", out.Metadata.PageCount, "text_bytes", len(out.Text))
		return assembleSuccess(out)
	}

	// escalate: keep only the page count, discard the rest of the first pass
	pageCount := out.Metadata.PageCount
	out = extract.Outcome{}

	if err := buf.Reset(); err != nil {
		p.logger.Error("stream replay failed before ocr pass", "request_id", reqID, "error", err)
		return assembleFailure(err)
	}

	backend := bs.pdfOCR
	if bs.pdfLegacy != nil && pageCount == 1 {
		backend = bs.pdfLegacy
	}
	p.logger.Info("escalating to ocr", "request_id", reqID, "backend", backend.ID(), "first_pass_pages", pageCount)

	out, err = backend.Parse(ctx, buf)
	if err != nil {
		p.logger.Error("ocr pass failed", "request_id", reqID, "backend", backend.ID(), "error", err)
		return assembleFailure(err)
	}
	out.Metadata = extract.TagProvenance(out.Metadata, backend.ID())
	p.logger.Info("document processed", "request_id", reqID, "parsed_by", backend.ID(), "pages", out.Metadata.PageCount, "text_bytes", len(out.Text))
	return assembleSuccess(out)
}
