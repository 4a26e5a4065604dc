// Package contextutil carries request-scoped values (the request id and a
// tagged logger) from the HTTP edge into services and the outbox.
package contextutil

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// WithRequest stores the request id and its logger in one step.
func WithRequest(ctx context.Context, requestID string, logger *zap.Logger) context.Context {
	ctx = WithRequestID(ctx, requestID)
	if logger != nil {
		ctx = context.WithValue(ctx, loggerKey, logger)
	}
	return ctx
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID is empty outside an HTTP request, e.g. in the outbox worker.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

// Logger returns the request logger, or fallback, or a no-op logger.
func Logger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}
