package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearscan/doc-extractor/internal/detect"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

func TestMediaTypePDF(t *testing.T) {
	buf := streambuf.FromBytes([]byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"))
	mt, err := detect.MediaType(buf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mt)
	assert.True(t, detect.IsPDF(mt))
}

func TestMediaTypePlainText(t *testing.T) {
	buf := streambuf.FromBytes([]byte("just some ordinary words\n"))
	mt, err := detect.MediaType(buf)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)
	assert.False(t, detect.IsPDF(mt))
}

func TestMediaTypePNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	buf := streambuf.FromBytes(png)
	mt, err := detect.MediaType(buf)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
}

func TestMediaTypeDoesNotAdvanceBuffer(t *testing.T) {
	data := []byte("%PDF-1.7 some pdf bytes")
	buf := streambuf.FromBytes(data)

	_, err := detect.MediaType(buf)
	require.NoError(t, err)

	all, err := buf.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, data, all)
}
