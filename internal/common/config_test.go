package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 100, cfg.Extraction.PDFMinDocTextLength)
	assert.Equal(t, int64(10000), cfg.Extraction.PDFMinDocByteSize)
	assert.True(t, cfg.Extraction.PDFOCROnlyStrategy)
	assert.False(t, cfg.Extraction.UseLegacyOCRParserForSinglePageDocuments)
	assert.Equal(t, "eng", cfg.Extraction.OCRLanguage)
	assert.Equal(t, 300*time.Second, cfg.Extraction.OCRTimeout)
	assert.Equal(t, int64(256<<20), cfg.Extraction.MaxDocBytes)
	assert.Equal(t, ":8090", cfg.Server.HTTPAddr)
	assert.Equal(t, "pdftotext", cfg.Tools.Pdftotext)
	assert.Equal(t, 300, cfg.Tools.DPI)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PDF_MIN_DOC_TEXT_LENGTH", "42")
	t.Setenv("PDF_MIN_DOC_BYTE_SIZE", "2048")
	t.Setenv("PDF_USE_LEGACY_SINGLE_PAGE_OCR", "true")
	t.Setenv("OCR_TIMEOUT", "90s")
	t.Setenv("OCR_LANGUAGE", "deu")
	t.Setenv("TESSERACT_BIN", "/opt/tesseract")

	cfg := LoadConfig()

	assert.Equal(t, 42, cfg.Extraction.PDFMinDocTextLength)
	assert.Equal(t, int64(2048), cfg.Extraction.PDFMinDocByteSize)
	assert.True(t, cfg.Extraction.UseLegacyOCRParserForSinglePageDocuments)
	assert.Equal(t, 90*time.Second, cfg.Extraction.OCRTimeout)
	assert.Equal(t, "deu", cfg.Extraction.OCRLanguage)
	assert.Equal(t, "/opt/tesseract", cfg.Tools.Tesseract)
}

func TestLoadConfigIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("PDF_MIN_DOC_TEXT_LENGTH", "not-a-number")
	t.Setenv("OCR_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 100, cfg.Extraction.PDFMinDocTextLength)
	assert.Equal(t, 300*time.Second, cfg.Extraction.OCRTimeout)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.Server.HTTPAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Extraction.PDFMinDocTextLength = -1
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Extraction.MaxDocBytes = 0
	assert.Error(t, cfg.Validate())
}
