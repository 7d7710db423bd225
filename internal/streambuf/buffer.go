// Package streambuf provides a replayable view over the bytes of a single
// document, so the same input can be fed to multiple parsing passes without
// re-reading from the original source.
package streambuf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/clearscan/doc-extractor/internal/common"
)

// Buffer wraps a seekable byte source with mark/reset semantics. The
// orchestrator marks before the first parsing pass and resets before any
// subsequent pass; every pass then observes the same initial bytes.
type Buffer struct {
	rs   io.ReadSeeker
	size int64
	mark int64
}

// New wraps r. A source that already seeks is used in place; anything else is
// spooled fully into memory, bounded by maxBytes (common.ErrTooLarge beyond
// that). maxBytes <= 0 means no bound.
func New(r io.Reader, maxBytes int64) (*Buffer, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		size, err := seekSize(rs)
		if err != nil {
			return nil, common.WrapError(err, "determine stream size")
		}
		return &Buffer{rs: rs, size: size}, nil
	}

	var buf bytes.Buffer
	if maxBytes > 0 {
		n, err := io.Copy(&buf, io.LimitReader(r, maxBytes+1))
		if err != nil {
			return nil, common.WrapError(err, "buffer stream")
		}
		if n > maxBytes {
			return nil, fmt.Errorf("%w (limit %d bytes)", common.ErrTooLarge, maxBytes)
		}
	} else {
		if _, err := io.Copy(&buf, r); err != nil {
			return nil, common.WrapError(err, "buffer stream")
		}
	}
	b := buf.Bytes()
	return &Buffer{rs: bytes.NewReader(b), size: int64(len(b))}, nil
}

// FromBytes wraps an in-memory document.
func FromBytes(b []byte) *Buffer {
	return &Buffer{rs: bytes.NewReader(b), size: int64(len(b))}
}

func (b *Buffer) Read(p []byte) (int, error) {
	return b.rs.Read(p)
}

// Mark records the current position as the replay point.
func (b *Buffer) Mark() error {
	pos, err := b.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrReplayUnsupported, err)
	}
	b.mark = pos
	return nil
}

// Reset rewinds to the last mark (or to the start when Mark was never
// called). Fails with common.ErrReplayUnsupported when the source cannot
// seek back.
func (b *Buffer) Reset() error {
	if _, err := b.rs.Seek(b.mark, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", common.ErrReplayUnsupported, err)
	}
	return nil
}

// Position returns the bytes consumed since the last mark.
func (b *Buffer) Position() (int64, error) {
	pos, err := b.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrReplayUnsupported, err)
	}
	return pos - b.mark, nil
}

// Peek returns up to n leading bytes from the current position without
// advancing it. Used by media-type detection, which must not exhaust bytes
// needed by later full parses.
func (b *Buffer) Peek(n int) ([]byte, error) {
	pos, err := b.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrReplayUnsupported, err)
	}
	p := make([]byte, n)
	read, err := io.ReadFull(b.rs, p)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, common.WrapError(err, "peek stream")
	}
	if _, err := b.rs.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrReplayUnsupported, err)
	}
	return p[:read], nil
}

// ReadAll consumes the stream from the current position to EOF, advancing
// Position accordingly.
func (b *Buffer) ReadAll() ([]byte, error) {
	data, err := io.ReadAll(b.rs)
	if err != nil {
		return nil, common.WrapError(err, "read stream")
	}
	return data, nil
}

// Size is the total byte size of the underlying source.
func (b *Buffer) Size() int64 {
	return b.size
}

func seekSize(rs io.ReadSeeker) (int64, error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := rs.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}
