package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

const (
	strategyOCROnly    = "ocr-only"
	strategyOCRAndText = "ocr-and-text"
)

// PDFOCR extracts text from a PDF by rasterizing its pages and running OCR
// over each one. Two strategies, governed by PDFOCROnlyStrategy:
//
//   - ocr-only: the raw text layer is discarded; output is purely OCR.
//   - ocr-and-text: the raw text layer is merged with the OCR output. When a
//     page carries both, the content is duplicated. Known limitation, kept
//     as-is.
type PDFOCR struct {
	cfg    common.ExtractionConfig
	tools  common.ToolsConfig
	runner Runner
	logger *slog.Logger
}

func NewPDFOCR(cfg common.ExtractionConfig, tools common.ToolsConfig, runner Runner, logger *slog.Logger) *PDFOCR {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{log: logger}
	}
	return &PDFOCR{cfg: cfg, tools: tools, runner: runner, logger: logger}
}

func (p *PDFOCR) ID() constants.ParserID {
	return constants.ParserPDFOCR
}

func (p *PDFOCR) strategy() string {
	if p.cfg.PDFOCROnlyStrategy {
		return strategyOCROnly
	}
	return strategyOCRAndText
}

func (p *PDFOCR) Parse(ctx context.Context, buf *streambuf.Buffer) (extract.Outcome, error) {
	data, err := buf.ReadAll()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	path, cleanup, err := spoolTemp(data, "dx-pdfocr-*", "doc.pdf")
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}
	defer cleanup()

	pages, err := pdfPreflight(path)
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	ocrText, ocrPages, err := p.ocrAllPages(ctx, path)
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	text := ocrText
	if !p.cfg.PDFOCROnlyStrategy {
		// merge the raw text layer with the OCR output; pages present in
		// both are duplicated
		out, errb, terr := p.runner.Run(ctx, p.tools.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
		if terr != nil {
			p.logger.Error("pdftotext failed during merge", "error", terr, "stderr", truncate(string(errb), 2<<10))
			return extract.Outcome{}, common.NewParseError(string(p.ID()), common.WrapError(terr, "pdftotext"))
		}
		if layer := strings.TrimRight(string(out), "\f\n "); layer != "" {
			text = layer + "\n" + ocrText
		}
	}

	consumed, err := buf.Position()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	p.logger.Info("pdf ocr complete",
		"pages", pages,
		"ocr_pages", ocrPages,
		"strategy", p.strategy(),
		"text_bytes", len(text),
		"confidence", ocrConfidence(ocrText),
	)

	extra := map[string]string{
		"Content-Type": constants.MediaTypePDF,
		"ocr-strategy": p.strategy(),
		"ocr-language": p.cfg.OCRLanguage,
	}
	// page-count always reports the document's real page count; a MaxPages
	// cap on the OCR pass is surfaced separately
	if ocrPages > 0 && ocrPages < pages {
		extra["ocr-pages"] = strconv.Itoa(ocrPages)
		p.logger.Warn("ocr page cap reached", "pages", pages, "ocr_pages", ocrPages)
	}

	return extract.Outcome{
		Text: text,
		Metadata: extract.Metadata{
			PageCount: pages,
			Extra:     extra,
		},
		BytesConsumed: consumed,
	}, nil
}

// ocrAllPages rasterizes the document and OCRs every rendered page. The whole
// OCR phase is bounded by OCRTimeout; hitting it surfaces as a parse failure,
// not as caller-level cancellation.
func (p *PDFOCR) ocrAllPages(ctx context.Context, path string) (string, int, error) {
	ocrCtx := ctx
	if p.cfg.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, p.cfg.OCRTimeout)
		defer cancel()
	}

	prefix := filepath.Join(filepath.Dir(path), "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := p.runner.Run(ocrCtx, p.tools.Pdftoppm, "-r", fmt.Sprintf("%d", p.tools.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if p.tools.MaxPages > 0 && len(matches) > p.tools.MaxPages {
		matches = matches[:p.tools.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, errors.New("no pages rendered")
	}

	var texts []string
	for _, img := range matches {
		if p.cfg.OCREnableImageProcessing {
			if prep, perr := preprocessImage(ocrCtx, p.runner, p.tools.Magick, img); perr == nil {
				img = prep
			} else {
				p.logger.Warn("image preprocessing failed, using raw page", "page", filepath.Base(img), "error", perr)
			}
		}
		txt, stderr, oerr := ocrImage(ocrCtx, p.runner, p.tools.Tesseract, p.cfg.OCRLanguage, p.cfg.OCRApplyRotation, img)
		if oerr != nil {
			if ocrCtx.Err() != nil {
				return "", 0, fmt.Errorf("ocr timed out after %s", p.cfg.OCRTimeout)
			}
			p.logger.Warn("page ocr failed", "page", filepath.Base(img), "error", oerr, "stderr", truncate(string(stderr), 512))
			continue
		}
		texts = append(texts, txt)
		_ = os.Remove(img)
	}
	return joinPages(texts), len(matches), nil
}
