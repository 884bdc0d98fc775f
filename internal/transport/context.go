package transport

import "context"

type contextKey string

const (
	requestIDKey     contextKey = "storefront.request_id"
	correlationIDKey contextKey = "storefront.correlation_id"
)

// WithRequestID pins the X-Request-ID sent by calls made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithCorrelationID pins the X-Correlation-ID sent by calls made with ctx.
// Use it to tie several requests of one user action together.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
