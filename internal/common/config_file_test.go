package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extraction.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestApplyConfigFileOverlays(t *testing.T) {
	cfg := LoadConfig()
	path := writeTempConfig(t, `{
		"pdf_min_doc_text_length": 7,
		"pdf_ocr_only_strategy": false,
		"ocr_timeout": "45s",
		"ocr_language": "fra"
	}`)

	require.NoError(t, ApplyConfigFile(cfg, path))

	assert.Equal(t, 7, cfg.Extraction.PDFMinDocTextLength)
	assert.False(t, cfg.Extraction.PDFOCROnlyStrategy)
	assert.Equal(t, 45*time.Second, cfg.Extraction.OCRTimeout)
	assert.Equal(t, "fra", cfg.Extraction.OCRLanguage)
	// untouched fields keep their env defaults
	assert.Equal(t, int64(10000), cfg.Extraction.PDFMinDocByteSize)
}

func TestApplyConfigFileRejectsWrongType(t *testing.T) {
	cfg := LoadConfig()
	path := writeTempConfig(t, `{"pdf_min_doc_text_length": "lots"}`)

	err := ApplyConfigFile(cfg, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is invalid")
	// nothing was applied
	assert.Equal(t, 100, cfg.Extraction.PDFMinDocTextLength)
}

func TestApplyConfigFileRejectsUnknownKey(t *testing.T) {
	cfg := LoadConfig()
	path := writeTempConfig(t, `{"pdf_min_text": 5}`)

	require.Error(t, ApplyConfigFile(cfg, path))
}

func TestApplyConfigFileRejectsBadDuration(t *testing.T) {
	cfg := LoadConfig()
	path := writeTempConfig(t, `{"ocr_timeout": "soon"}`)

	require.Error(t, ApplyConfigFile(cfg, path))
}

func TestApplyConfigFileMissingFile(t *testing.T) {
	cfg := LoadConfig()
	require.Error(t, ApplyConfigFile(cfg, filepath.Join(t.TempDir(), "nope.json")))
}
