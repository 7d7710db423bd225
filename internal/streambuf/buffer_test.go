package streambuf_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// nonSeeker hides the Seeker half of a reader so New has to spool.
type nonSeeker struct {
	r io.Reader
}

func (n nonSeeker) Read(p []byte) (int, error) { return n.r.Read(p) }

func TestNewSpoolsNonSeekableSource(t *testing.T) {
	data := []byte("the quick brown fox")
	buf, err := streambuf.New(nonSeeker{bytes.NewReader(data)}, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), buf.Size())

	got, err := buf.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestNewRejectsOversizedSource(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)
	_, err := streambuf.New(nonSeeker{bytes.NewReader(data)}, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTooLarge)
}

func TestNewAcceptsSourceAtLimit(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)
	buf, err := streambuf.New(nonSeeker{bytes.NewReader(data)}, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), buf.Size())
}

func TestNewUsesSeekerInPlace(t *testing.T) {
	buf, err := streambuf.New(strings.NewReader("abcdef"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), buf.Size())
}

func TestMarkResetReplaysSameBytes(t *testing.T) {
	buf := streambuf.FromBytes([]byte("abcdefgh"))
	require.NoError(t, buf.Mark())

	first, err := buf.ReadAll()
	require.NoError(t, err)

	require.NoError(t, buf.Reset())
	second, err := buf.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMarkFromNonZeroPosition(t *testing.T) {
	buf := streambuf.FromBytes([]byte("skipDATA"))

	head := make([]byte, 4)
	_, err := io.ReadFull(buf, head)
	require.NoError(t, err)

	require.NoError(t, buf.Mark())
	rest, err := buf.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "DATA", string(rest))

	require.NoError(t, buf.Reset())
	again, err := buf.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "DATA", string(again))
}

func TestPositionCountsFromMark(t *testing.T) {
	buf := streambuf.FromBytes([]byte("0123456789"))
	require.NoError(t, buf.Mark())

	pos, err := buf.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	_, err = buf.ReadAll()
	require.NoError(t, err)

	pos, err = buf.Position()
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	buf := streambuf.FromBytes([]byte("abcdef"))

	head, err := buf.Peek(3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(head))

	all, err := buf.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(all))
}

func TestPeekPastEOFReturnsWhatExists(t *testing.T) {
	buf := streambuf.FromBytes([]byte("ab"))

	head, err := buf.Peek(100)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(head))
}

// brokenSeeker fails every Seek; construction must surface the failure.
type brokenSeeker struct {
	io.Reader
}

func (brokenSeeker) Seek(int64, int) (int64, error) {
	return 0, io.ErrClosedPipe
}

func TestNewFailsOnBrokenSeeker(t *testing.T) {
	_, err := streambuf.New(brokenSeeker{strings.NewReader("x")}, 0)
	require.Error(t, err)
}
