package pipeline

import (
	"time"

	"github.com/clearscan/doc-extractor/internal/extract"
)

// errPrefix is the documented prefix of every failure message. Callers match
// substrings of the error text (e.g. "document is encrypted"), so the cause
// message is appended verbatim.
const errPrefix = "Exception caught while processing the document: "

// Result is the terminal output of one process call. Success results carry a
// timestamp; failures never do, and they carry no text or metadata.
type Result struct {
	Success   bool              `json:"success"`
	Text      string            `json:"text,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Error     *string           `json:"error"`
	Timestamp *time.Time        `json:"timestamp"`
}

// assembleSuccess packages an accepted outcome, stamping the completion time.
func assembleSuccess(out extract.Outcome) Result {
	now := time.Now().UTC()
	return Result{
		Success:   true,
		Text:      out.Text,
		Metadata:  out.Metadata.Flatten(),
		Timestamp: &now,
	}
}

// assembleFailure converts any backend or detection error into a failed
// result. No timestamp, no text, no metadata.
func assembleFailure(err error) Result {
	msg := errPrefix + err.Error()
	return Result{
		Success: false,
		Error:   &msg,
	}
}
