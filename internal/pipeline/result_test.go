package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/extract"
)

func TestAssembleSuccess(t *testing.T) {
	out := extract.Outcome{
		Text:     "hello",
		Metadata: extract.Metadata{PageCount: 1, ParsedBy: constants.ParserPDFText},
	}
	r := assembleSuccess(out)

	assert.True(t, r.Success)
	assert.Equal(t, "hello", r.Text)
	assert.Equal(t, "pdf-text", r.Metadata["X-Parsed-By"])
	assert.Nil(t, r.Error)
	require.NotNil(t, r.Timestamp)
}

func TestAssembleFailure(t *testing.T) {
	r := assembleFailure(errors.New("document is encrypted"))

	assert.False(t, r.Success)
	require.NotNil(t, r.Error)
	assert.Equal(t, "Exception caught while processing the document: document is encrypted", *r.Error)
	assert.Nil(t, r.Timestamp)
	assert.Empty(t, r.Text)
	assert.Nil(t, r.Metadata)
}

func TestResultWireShape(t *testing.T) {
	ok := assembleSuccess(extract.Outcome{Text: "x"})
	data, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success":true`)
	assert.Contains(t, string(data), `"error":null`)

	bad := assembleFailure(errors.New("boom"))
	data, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"success":false`)
	assert.Contains(t, string(data), `"timestamp":null`)
	assert.NotContains(t, string(data), `"text"`)
	assert.NotContains(t, string(data), `"metadata"`)
}
