package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// ContextWithRequestID returns a new context carrying the request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom retrieves the request id from the request context.
func RequestIDFrom(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

// RequestIDFromContext retrieves the request id from ctx.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
