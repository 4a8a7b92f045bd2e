package logging

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with context-aware methods that attach correlation
// fields (trace/span ids, request id, conversion id) automatically.
type Logger struct {
	zl *zap.Logger
}

// NewLogger builds a Logger from cfg.
func NewLogger(cfg Config) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}

	core, err := newDualCore(cfg)
	if err != nil {
		return nil, fmt.Errorf("build core: %w", err)
	}

	opts := []zap.Option{}
	if cfg.Caller.Enabled {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(cfg.Caller.Skip))
	}
	if cfg.Stacktrace.Level != "" {
		level, err := LevelFromString(cfg.Stacktrace.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid stacktrace level: %w", err)
		}
		opts = append(opts, zap.AddStacktrace(level))
	}

	zl := zap.New(core, opts...)

	if len(cfg.Fields) > 0 {
		fields := make([]zap.Field, 0, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields = append(fields, zap.String(k, v))
		}
		zl = zl.With(fields...)
	}

	return &Logger{zl: zl}, nil
}

// NewNop returns a Logger that discards everything. For tests and as a
// fallback when no logger is present in a context.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	if format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

// Trace logs at TraceLevel.
func (l *Logger) Trace(msg string, fields ...zap.Field) {
	if ce := l.zl.Check(TraceLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zl.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zl.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zl.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zl.Error(msg, fields...) }

// TraceContext logs at TraceLevel with correlation fields from ctx.
func (l *Logger) TraceContext(ctx context.Context, msg string, fields ...zap.Field) {
	if ce := l.zl.Check(TraceLevel, msg); ce != nil {
		ce.Write(append(ContextFields(ctx), fields...)...)
	}
}

// DebugContext logs at DebugLevel with correlation fields from ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.zl.Debug(msg, append(ContextFields(ctx), fields...)...)
}

// InfoContext logs at InfoLevel with correlation fields from ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.zl.Info(msg, append(ContextFields(ctx), fields...)...)
}

// WarnContext logs at WarnLevel with correlation fields from ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.zl.Warn(msg, append(ContextFields(ctx), fields...)...)
}

// ErrorContext logs at ErrorLevel with correlation fields from ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, fields ...zap.Field) {
	l.zl.Error(msg, append(ContextFields(ctx), fields...)...)
}

// With returns a child logger with fields attached to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zl: l.zl.With(fields...)}
}

// Named adds a sub-scope to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name)}
}

// Enabled reports whether the given level would be logged.
func (l *Logger) Enabled(level zapcore.Level) bool {
	return l.zl.Core().Enabled(level)
}

// Sync flushes buffered entries. Errors from syncing stdout are ignored
// since stdout is typically not a syncable file.
func (l *Logger) Sync() error {
	err := l.zl.Sync()
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

// Underlying exposes the wrapped *zap.Logger for bridges that need it.
func (l *Logger) Underlying() *zap.Logger {
	return l.zl
}

// isStdoutSyncError recognizes the errno returned when fsyncing a
// terminal or pipe, which is expected and harmless.
func isStdoutSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
