package logging

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type requestIDKey struct{}
type conversionIDKey struct{}
type loggerKey struct{}

// maxIDLength bounds correlation ids to keep log entries tidy and to
// reject junk from untrusted headers.
const maxIDLength = 128

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("id exceeds %d characters", maxIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("id contains invalid character %q", r)
		}
	}
	return nil
}

// WithRequestID attaches a request id to ctx. Panics on invalid ids:
// request ids are produced by our own middleware, so an invalid one is
// a programming error.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if err := validateID(requestID); err != nil {
		panic(fmt.Sprintf("invalid request id: %v", err))
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithConversionID attaches a conversion id to ctx. Panics on invalid
// ids for the same reason as WithRequestID: they are generated, never
// user supplied.
func WithConversionID(ctx context.Context, conversionID string) context.Context {
	if err := validateID(conversionID); err != nil {
		panic(fmt.Sprintf("invalid conversion id: %v", err))
	}
	return context.WithValue(ctx, conversionIDKey{}, conversionID)
}

// ConversionIDFromContext returns the conversion id, or "" when absent.
func ConversionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(conversionIDKey{}).(string)
	return id
}

// WithLogger stores a logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a nop logger when
// none is present. Never returns nil.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok && logger != nil {
		return logger
	}
	return NewNop()
}

// ContextFields extracts correlation fields from ctx: the active trace
// and span ids, the request id, and the conversion id. Missing values
// are simply omitted.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		fields = append(fields,
			zap.String("trace.id", span.TraceID().String()),
			zap.String("span.id", span.SpanID().String()),
		)
		if span.IsSampled() {
			fields = append(fields, zap.Bool("trace.sampled", true))
		}
	}

	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if id := ConversionIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("conversion.id", id))
	}

	return fields
}
