package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestCtxKey struct{}

// WithRequestID attaches a request id to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// NewRequestID returns a fresh request id.
func NewRequestID() string {
	return uuid.NewString()
}

// EnsureRequestID returns ctx unchanged when it already carries a
// request id, otherwise attaches a new one.
func EnsureRequestID(ctx context.Context) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, NewRequestID())
}

// RequestIDFromContext returns the request id, or "" if unset.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request.id", requestID))
	}
	return fields
}
