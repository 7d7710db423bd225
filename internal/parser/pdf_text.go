package parser

import (
	"context"
	"log/slog"
	"strings"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// PDFText extracts only the embedded text layer of a PDF. It never invokes
// OCR and does not extract inline images; it is the cheap first-pass
// candidate for PDFs.
type PDFText struct {
	tools  common.ToolsConfig
	runner Runner
	logger *slog.Logger
}

func NewPDFText(tools common.ToolsConfig, runner Runner, logger *slog.Logger) *PDFText {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{log: logger}
	}
	return &PDFText{tools: tools, runner: runner, logger: logger}
}

func (p *PDFText) ID() constants.ParserID {
	return constants.ParserPDFText
}

func (p *PDFText) Parse(ctx context.Context, buf *streambuf.Buffer) (extract.Outcome, error) {
	data, err := buf.ReadAll()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	path, cleanup, err := spoolTemp(data, "dx-pdftext-*", "doc.pdf")
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}
	defer cleanup()

	pages, err := pdfPreflight(path)
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.tools.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		p.logger.Error("pdftotext failed", "error", err, "stderr", truncate(string(errb), 2<<10))
		return extract.Outcome{}, common.NewParseError(string(p.ID()), common.WrapError(err, "pdftotext"))
	}

	consumed, err := buf.Position()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(p.ID()), err)
	}

	return extract.Outcome{
		Text: strings.TrimRight(string(out), "\f\n "),
		Metadata: extract.Metadata{
			PageCount: pages,
			Extra:     map[string]string{"Content-Type": constants.MediaTypePDF},
		},
		BytesConsumed: consumed,
	}, nil
}
