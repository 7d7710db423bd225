package parser

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// PDFLegacySinglePage is the alternate OCR pipeline for single-page,
// image-only PDFs (commonly produced by office-suite PDF export where the
// whole page is one embedded image and there is no real text layer). The
// document is converted to a single image with ImageMagick, then OCRed in one
// shot. Selected by the policy only when the legacy mode is enabled and the
// first pass reported exactly one page.
type PDFLegacySinglePage struct {
	cfg    common.ExtractionConfig
	tools  common.ToolsConfig
	runner Runner
	logger *slog.Logger
}

func NewPDFLegacySinglePage(cfg common.ExtractionConfig, tools common.ToolsConfig, runner Runner, logger *slog.Logger) *PDFLegacySinglePage {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{log: logger}
	}
	return &PDFLegacySinglePage{cfg: cfg, tools: tools, runner: runner, logger: logger}
}

func (p *PDFLegacySinglePage) ID() constants.ParserID {
	return constants.ParserPDFOCRLegacy
}

func (p *PDFLegacySinglePage) Parse(ctx context.Context, buf *streambuf.Buffer) (extract.Outcome, error) {
	data, err := buf.ReadAll()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	path, cleanup, err := spoolTemp(data, "dx-pdflegacy-*", "doc.pdf")
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}
	defer cleanup()

	if _, err := pdfPreflight(path); err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	img, err := p.convert(ctx, path)
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	txt, err := p.ocr(ctx, img)
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	consumed, err := buf.Position()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	p.logger.Info("single-page ocr complete", "text_bytes", len(txt), "confidence", ocrConfidence(txt))

	return extract.Outcome{
		Text: txt,
		Metadata: extract.Metadata{
			PageCount: 1,
			Extra: map[string]string{
				"Content-Type": constants.MediaTypePDF,
				"ocr-language": p.cfg.OCRLanguage,
			},
		},
		BytesConsumed: consumed,
	}, nil
}

// convert flattens the single page to one PNG, bounded by ConversionTimeout.
func (p *PDFLegacySinglePage) convert(ctx context.Context, path string) (string, error) {
	convCtx := ctx
	if p.cfg.ConversionTimeout > 0 {
		var cancel context.CancelFunc
		convCtx, cancel = context.WithTimeout(ctx, p.cfg.ConversionTimeout)
		defer cancel()
	}

	out := filepath.Join(filepath.Dir(path), "page.png")
	// magick -density <dpi> <in.pdf> -flatten <out.png>
	if _, errb, err := p.runner.Run(convCtx, p.tools.Magick, "-density", fmt.Sprintf("%d", p.tools.DPI), path, "-flatten", out); err != nil {
		if convCtx.Err() != nil {
			return "", fmt.Errorf("image conversion timed out after %s", p.cfg.ConversionTimeout)
		}
		return "", fmt.Errorf("magick convert: %w (%s)", err, truncate(string(errb), 512))
	}
	return out, nil
}

func (p *PDFLegacySinglePage) ocr(ctx context.Context, img string) (string, error) {
	ocrCtx := ctx
	if p.cfg.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, p.cfg.OCRTimeout)
		defer cancel()
	}

	txt, stderr, err := ocrImage(ocrCtx, p.runner, p.tools.Tesseract, p.cfg.OCRLanguage, p.cfg.OCRApplyRotation, img)
	if err != nil {
		if ocrCtx.Err() != nil {
			return "", fmt.Errorf("ocr timed out after %s", p.cfg.OCRTimeout)
		}
		p.logger.Error("single-page ocr failed", "error", err, "stderr", truncate(string(stderr), 512))
		return "", err
	}
	return txt, nil
}
