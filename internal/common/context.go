package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyDocName   contextKey = "doc_name"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithDocName attaches the logical document name (filename or upload name).
func WithDocName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyDocName, name)
}

// DocNameFromContext extracts the logical document name from context
func DocNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyDocName).(string); ok {
		return name
	}
	return ""
}

// WithTimeout creates a context with the specified timeout
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
