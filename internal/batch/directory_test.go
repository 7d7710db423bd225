package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/batch"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/extract"
	"github.com/clearscan/doc-extractor/internal/pipeline"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

type stubBackend struct {
	id  constants.ParserID
	out extract.Outcome
	err error
}

func (s *stubBackend) ID() constants.ParserID { return s.id }

func (s *stubBackend) Parse(_ context.Context, buf *streambuf.Buffer) (extract.Outcome, error) {
	if _, err := buf.ReadAll(); err != nil {
		return extract.Outcome{}, err
	}
	return s.out, s.err
}

func newTestRunner(genericErr error) *batch.Runner {
	cfg := common.ExtractionConfig{
		PDFMinDocTextLength: 100,
		PDFMinDocByteSize:   10000,
		MaxDocBytes:         1 << 20,
	}
	generic := &stubBackend{id: constants.ParserGeneric, out: extract.Outcome{Text: "extracted"}, err: genericErr}
	pdfText := &stubBackend{id: constants.ParserPDFText}
	pdfOCR := &stubBackend{id: constants.ParserPDFOCR}
	proc := pipeline.NewProcessorWithBackends(cfg, generic, pdfText, pdfOCR, nil, nil)
	return batch.NewRunner(proc, nil, nil)
}

func seedDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))

	write := func(rel, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(body), 0o600))
	}
	write("a.txt", "alpha text")
	write("sub/b.csv", "x,y\n1,2")
	write(".skipme.txt", "hidden file")
	write(".hidden/c.txt", "inside hidden dir")
	write("d.bin", "binary junk")
	return root
}

func TestProcessDirectory(t *testing.T) {
	runner := newTestRunner(nil)
	root := seedDir(t)

	results, stats, err := runner.ProcessDirectory(context.Background(), root, nil, true)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Matched, "hidden and unmatched extensions are skipped")
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 0, stats.Failed)
	require.Len(t, results, 2)
	for _, fr := range results {
		assert.True(t, fr.Result.Success)
		assert.Equal(t, "extracted", fr.Result.Text)
		assert.Equal(t, "generic", fr.ParsedBy)
		assert.NotEmpty(t, fr.JobID)
	}
}

func TestProcessDirectoryExplicitExtensions(t *testing.T) {
	runner := newTestRunner(nil)
	root := seedDir(t)

	results, stats, err := runner.ProcessDirectory(context.Background(), root, []string{".txt"}, true)
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.Matched)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(root, "a.txt"), results[0].Path)
}

func TestProcessDirectoryKeepsHidden(t *testing.T) {
	runner := newTestRunner(nil)
	root := seedDir(t)

	_, stats, err := runner.ProcessDirectory(context.Background(), root, []string{"txt"}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Matched, "a.txt, .skipme.txt and .hidden/c.txt")
}

func TestProcessDirectoryCountsFailures(t *testing.T) {
	runner := newTestRunner(common.NewParseError("generic", common.ErrUnsupportedFormat))
	root := seedDir(t)

	results, stats, err := runner.ProcessDirectory(context.Background(), root, nil, true)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Failed)
	assert.EqualValues(t, 0, stats.Succeeded)
	for _, fr := range results {
		assert.False(t, fr.Result.Success)
		require.NotNil(t, fr.Result.Error)
		assert.Contains(t, *fr.Result.Error, "Exception caught while processing the document: ")
	}
}

func TestProcessDirectoryConcurrentWorkers(t *testing.T) {
	runner := newTestRunner(nil)
	runner.Workers = 4
	root := seedDir(t)

	results, stats, err := runner.ProcessDirectory(context.Background(), root, nil, true)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Succeeded)
	require.Len(t, results, 2)
	// walk order is preserved regardless of worker count
	assert.Equal(t, filepath.Join(root, "a.txt"), results[0].Path)
	assert.Equal(t, filepath.Join(root, "sub", "b.csv"), results[1].Path)
}

func TestProcessDirectoryEmptyRoot(t *testing.T) {
	runner := newTestRunner(nil)
	_, _, err := runner.ProcessDirectory(context.Background(), "", nil, true)
	require.Error(t, err)
}
