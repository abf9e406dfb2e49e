package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for request-scoped context values.
type ContextKey string

// RequestIDKey is the context key for the per-request identifier.
const RequestIDKey ContextKey = "requestID"

// RequestIDHeader is the response header echoing the request identifier.
const RequestIDHeader = "X-Request-ID"

// NewRequestID returns a fresh random (version 4) UUID string.
func NewRequestID() string {
	return uuid.NewString()
}

// SetRequestID returns a copy of ctx carrying requestID.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// If no request ID exists, it returns an empty string.
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return requestID
}
