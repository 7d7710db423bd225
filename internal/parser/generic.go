package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/detect"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// maxEmbedDepth bounds recursive parsing of container documents.
const maxEmbedDepth = 4

// Generic handles every non-PDF document type: plain and derived text,
// spreadsheets, word-processor documents, images (via OCR) and archives.
// Container formats are parsed by explicit recursive self-invocation, so an
// embedded document goes through exactly the same routing as a top-level one.
type Generic struct {
	cfg    common.ExtractionConfig
	tools  common.ToolsConfig
	runner Runner
	logger *slog.Logger
}

func NewGeneric(cfg common.ExtractionConfig, tools common.ToolsConfig, runner Runner, logger *slog.Logger) *Generic {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{log: logger}
	}
	return &Generic{cfg: cfg, tools: tools, runner: runner, logger: logger}
}

func (g *Generic) ID() constants.ParserID {
	return constants.ParserGeneric
}

func (g *Generic) Parse(ctx context.Context, buf *streambuf.Buffer) (extract.Outcome, error) {
	mediaType, err := detect.MediaType(buf)
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(g.ID()), err)
	}
	return g.parseAs(ctx, buf, mediaType, 0)
}

func (g *Generic) parseAs(ctx context.Context, buf *streambuf.Buffer, mediaType string, depth int) (extract.Outcome, error) {
	data, err := buf.ReadAll()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(g.ID()), err)
	}

	var text string
	meta := extract.Metadata{Extra: map[string]string{"Content-Type": mediaType}}

	switch constants.MapMediaTypeToFormat(mediaType) {
	case constants.TEXT:
		text = string(data)
	case constants.HTML:
		text = stripHTML(string(data))
	case constants.SPREADSHEET:
		text, err = g.parseXLSX(data, &meta)
	case constants.WORD:
		text, err = parseDOCX(data)
	case constants.IMAGE:
		text, err = g.parseImage(ctx, data)
		meta.PageCount = 1
	case constants.ARCHIVE:
		text, err = g.parseArchive(ctx, data, &meta, depth)
	default:
		err = fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, mediaType)
	}
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(g.ID()), err)
	}

	consumed, err := buf.Position()
	if err != nil {
		return extract.Outcome{}, common.NewParseError(string(g.ID()), err)
	}

	return extract.Outcome{Text: text, Metadata: meta, BytesConsumed: consumed}, nil
}

func (g *Generic) parseXLSX(data []byte, meta *extract.Metadata) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", common.WrapError(err, "open spreadsheet")
	}
	defer func() { _ = f.Close() }()

	var sheets []string
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			g.logger.Warn("skipping unreadable sheet", "sheet", name, "error", err)
			continue
		}
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		sheets = append(sheets, b.String())
	}
	meta.Extra["sheet-count"] = strconv.Itoa(len(sheets))
	return joinPages(sheets), nil
}

func (g *Generic) parseImage(ctx context.Context, data []byte) (string, error) {
	path, cleanup, err := spoolTemp(data, "dx-img-*", "image")
	if err != nil {
		return "", err
	}
	defer cleanup()

	ocrCtx := ctx
	if g.cfg.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, g.cfg.OCRTimeout)
		defer cancel()
	}
	txt, stderr, err := ocrImage(ocrCtx, g.runner, g.tools.Tesseract, g.cfg.OCRLanguage, g.cfg.OCRApplyRotation, path)
	if err != nil {
		if ocrCtx.Err() != nil {
			return "", fmt.Errorf("ocr timed out after %s", g.cfg.OCRTimeout)
		}
		g.logger.Error("image ocr failed", "error", err, "stderr", truncate(string(stderr), 512))
		return "", err
	}
	return txt, nil
}

// parseArchive extracts each archive entry and routes it back through the
// generic parser, concatenating the per-entry text.
func (g *Generic) parseArchive(ctx context.Context, data []byte, meta *extract.Metadata, depth int) (string, error) {
	if depth >= maxEmbedDepth {
		return "", errors.New("embedded document nesting too deep")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", common.WrapError(err, "open archive")
	}

	var texts []string
	entries := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries++
		content, err := readZipEntry(f)
		if err != nil {
			g.logger.Warn("skipping unreadable archive entry", "entry", f.Name, "error", err)
			continue
		}
		sub := streambuf.FromBytes(content)
		mediaType, err := detect.MediaType(sub)
		if err != nil {
			g.logger.Warn("skipping undetectable archive entry", "entry", f.Name, "error", err)
			continue
		}
		out, err := g.parseAs(ctx, sub, mediaType, depth+1)
		if err != nil {
			g.logger.Warn("skipping unparsable archive entry", "entry", f.Name, "error", err)
			continue
		}
		texts = append(texts, out.Text)
	}
	meta.Extra["archive-entries"] = strconv.Itoa(entries)
	return joinPages(texts), nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

var (
	reScriptBlocks = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	reTags         = regexp.MustCompile(`<[^>]+>`)
	reParaBreak    = regexp.MustCompile(`(?i)</(w:p|p|div|h[1-6]|li|tr)>`)
	reBlankRuns    = regexp.MustCompile(`\n{3,}`)
)

func stripHTML(s string) string {
	s = reScriptBlocks.ReplaceAllString(s, "")
	s = reParaBreak.ReplaceAllString(s, "\n")
	s = reTags.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(reBlankRuns.ReplaceAllString(s, "\n\n"))
}

// parseDOCX pulls the main document part out of the OOXML package and strips
// the markup.
func parseDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", common.WrapError(err, "open docx")
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		content, err := readZipEntry(f)
		if err != nil {
			return "", common.WrapError(err, "read docx body")
		}
		return stripHTML(string(content)), nil
	}
	return "", errors.New("docx has no word/document.xml part")
}
