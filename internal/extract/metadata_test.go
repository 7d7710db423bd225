package extract_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/extract"
)

func TestTagProvenanceDoesNotMutateInput(t *testing.T) {
	m := extract.Metadata{PageCount: 3}
	tagged := extract.TagProvenance(m, constants.ParserPDFText)

	assert.Equal(t, constants.ParserPDFText, tagged.ParsedBy)
	assert.Empty(t, m.ParsedBy)
	assert.Equal(t, 3, tagged.PageCount)
}

func TestSetExtraCopiesBag(t *testing.T) {
	m := extract.Metadata{Extra: map[string]string{"a": "1"}}
	m2 := extract.SetExtra(m, "b", "2")

	assert.Equal(t, "2", m2.Extra["b"])
	_, ok := m.Extra["b"]
	assert.False(t, ok, "original bag must stay untouched")
}

func TestFlatten(t *testing.T) {
	m := extract.Metadata{
		PageCount: 2,
		ParsedBy:  constants.ParserPDFOCR,
		Extra:     map[string]string{"Content-Type": "application/pdf"},
	}
	flat := m.Flatten()

	assert.Equal(t, map[string]string{
		"page-count":   "2",
		"X-Parsed-By":  "pdf-ocr",
		"Content-Type": "application/pdf",
	}, flat)
}

func TestFlattenOmitsEmptyKnownFields(t *testing.T) {
	flat := extract.Metadata{}.Flatten()
	assert.Empty(t, flat)
}

func TestJSONRoundTrip(t *testing.T) {
	m := extract.Metadata{
		PageCount: 7,
		ParsedBy:  constants.ParserGeneric,
		Extra:     map[string]string{"sheet-count": "2"},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back extract.Metadata
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}
