package httpx

import "context"

type contextKey string

const requestIDKey contextKey = "requestID"

// ContextWithRequestID returns a context carrying the given request ID.
// Outgoing requests made with it reuse the ID instead of minting a new one.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
