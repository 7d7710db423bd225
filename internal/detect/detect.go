// Package detect sniffs a document's media type from its leading bytes.
package detect

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/common"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// sniffLen is the bounded, non-destructive read used for detection; it is
// mimetype's own default read limit.
const sniffLen = 3072

// MediaType sniffs the buffer's media type without advancing its position,
// so the bytes remain available to the full parsing passes that follow.
func MediaType(buf *streambuf.Buffer) (string, error) {
	head, err := buf.Peek(sniffLen)
	if err != nil {
		return "", &common.DetectionError{Cause: err}
	}
	mt := mimetype.Detect(head)
	// strip parameters, e.g. "text/plain; charset=utf-8"
	s := mt.String()
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s), nil
}

// IsPDF reports whether the sniffed media type routes to the PDF strategy
// chain. Only this distinction drives routing; finer-grained types are
// handled inside the generic backend.
func IsPDF(mediaType string) bool {
	return mediaType == constants.MediaTypePDF
}
