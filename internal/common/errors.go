package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")

	// ErrEncrypted marks a password-protected document. The message text is
	// load-bearing: callers match the final error string for
	// "document is encrypted".
	ErrEncrypted = errors.New("document is encrypted")

	// ErrReplayUnsupported is returned when a second parsing pass is needed
	// but the input stream cannot be rewound.
	ErrReplayUnsupported = errors.New("stream does not support replay")

	// ErrTooLarge guards the in-memory buffering of non-seekable sources.
	ErrTooLarge = errors.New("document exceeds maximum allowed size")

	// ErrUnsupportedFormat is returned for media types no backend handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// ParseError is any backend-level failure: malformed document, encryption,
// OCR/conversion timeout, tool invocation failure. The orchestrator does not
// subdivide it further; the cause message is preserved verbatim in the final
// error string.
type ParseError struct {
	Parser string
	Cause  error
}

func (e *ParseError) Error() string {
	return e.Cause.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError wraps a backend failure with the backend's identifier.
func NewParseError(parser string, cause error) *ParseError {
	return &ParseError{Parser: parser, Cause: cause}
}

// DetectionError marks a failure at the media-type sniffing stage.
type DetectionError struct {
	Cause error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("media type detection failed: %v", e.Cause)
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
