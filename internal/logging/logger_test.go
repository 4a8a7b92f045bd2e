package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "default config",
			mutate: func(c *Config) {},
		},
		{
			name:   "console format",
			mutate: func(c *Config) { c.Format = "console" },
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Format = "xml" },
			wantErr: true,
		},
		{
			name: "no outputs",
			mutate: func(c *Config) {
				c.Output.Stdout = false
				c.Output.OTEL = false
			},
			wantErr: true,
		},
		{
			name:    "invalid stacktrace level",
			mutate:  func(c *Config) { c.Stacktrace.Level = "catastrophic" },
			wantErr: true,
		},
		{
			name:    "invalid redaction pattern",
			mutate:  func(c *Config) { c.Redaction.Patterns = []string{"[unclosed"} },
			wantErr: true,
		},
		{
			name:   "sampling disabled",
			mutate: func(c *Config) { c.Sampling.Enabled = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg)

			logger, err := NewLogger(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.NoError(t, logger.Sync())
		})
	}
}

func TestLogger_ContextMethods(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithConversionID(ctx, "conv-456")

	tl.InfoContext(ctx, "conversion started", zap.Int("tasks", 3))
	tl.WarnContext(ctx, "retrying plan")
	tl.ErrorContext(ctx, "validation exhausted")
	tl.DebugContext(ctx, "fragment detail")
	tl.TraceContext(ctx, "entering reader")

	tl.AssertLogged(t, zapcore.InfoLevel, "conversion started")
	tl.AssertLogged(t, zapcore.WarnLevel, "retrying plan")
	tl.AssertLogged(t, zapcore.ErrorLevel, "validation exhausted")
	tl.AssertLogged(t, zapcore.DebugLevel, "fragment detail")
	tl.AssertLogged(t, TraceLevel, "entering reader")

	tl.AssertField(t, "conversion started", "request.id", "req-123")
	tl.AssertField(t, "conversion started", "conversion.id", "conv-456")
	tl.AssertField(t, "conversion started", "tasks", 3)
}

func TestLogger_With(t *testing.T) {
	tl := NewTestLogger()
	child := tl.With(zap.String("stage", "planner"))
	child.Info("planned")

	tl.AssertField(t, "planned", "stage", "planner")
}

func TestLogger_Named(t *testing.T) {
	tl := NewTestLogger()
	named := tl.Named("orchestrator")
	named.Info("hello")

	entries := tl.FilterMessage("hello").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "orchestrator", entries[0].LoggerName)
}

func TestLogger_Enabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level = zapcore.WarnLevel
	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	assert.True(t, logger.Enabled(zapcore.ErrorLevel))
	assert.True(t, logger.Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(TraceLevel))
}

func TestFromContext_Fallback(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// Nop logger: must not panic
	logger.Info("discarded")
}

func TestFromContext_RoundTrip(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)

	FromContext(ctx).Info("stored logger used")
	tl.AssertLogged(t, zapcore.InfoLevel, "stored logger used")
}
