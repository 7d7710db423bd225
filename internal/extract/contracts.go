package extract

import (
	"context"

	"github.com/clearscan/doc-extractor/constants"
	"github.com/clearscan/doc-extractor/internal/streambuf"
)

// Backend is one of the four interchangeable extraction strategies. Every
// implementation reads the document from buf and returns a single immutable
// Outcome; failures surface as *common.ParseError.
type Backend interface {
	ID() constants.ParserID
	Parse(ctx context.Context, buf *streambuf.Buffer) (Outcome, error)
}

// Outcome is the product of a single backend invocation.
type Outcome struct {
	Text          string
	Metadata      Metadata
	BytesConsumed int64
}
