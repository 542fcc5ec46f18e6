package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

type requestIDKey struct{}

var fallbackLogger = zap.NewNop()

// WithLogger returns a context carrying the request-scoped logger.
// A nil logger is replaced with the shared no-op logger so callers can
// always log without nil checks.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = fallbackLogger
	}
	return context.WithValue(ensure(ctx), loggerKey{}, logger)
}

// Logger returns the logger stored on the context, or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return fallbackLogger
}

// NoopLogger returns the shared no-op logger.
func NoopLogger() *zap.Logger { return fallbackLogger }

// WithRequestID returns a context carrying the request identifier. An empty
// identifier leaves the context unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ensure(ctx)
	}
	return context.WithValue(ensure(ctx), requestIDKey{}, id)
}

// RequestID returns the request identifier stored on the context, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func ensure(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
