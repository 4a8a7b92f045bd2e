package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-abc-123")
	assert.Equal(t, "req-abc-123", RequestIDFromContext(ctx))
}

func TestWithRequestID_PanicsOnInvalid(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", 129)},
		{"invalid characters", "req id with spaces"},
		{"injection attempt", "req\nid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() {
				WithRequestID(context.Background(), tt.id)
			})
		})
	}
}

func TestWithConversionID(t *testing.T) {
	ctx := WithConversionID(context.Background(), "conv_01")
	assert.Equal(t, "conv_01", ConversionIDFromContext(ctx))

	assert.Panics(t, func() {
		WithConversionID(context.Background(), "")
	})
}

func TestIDFromContext_Absent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, ConversionIDFromContext(ctx))
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithConversionID(ctx, "conv-1")
	fields := ContextFields(ctx)
	require.Len(t, fields, 2)

	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.Contains(t, keys, "request.id")
	assert.Contains(t, keys, "conversion.id")
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validateID("abc-DEF_123"))
	assert.NoError(t, validateID(strings.Repeat("x", 128)))
	assert.Error(t, validateID(""))
	assert.Error(t, validateID(strings.Repeat("x", 129)))
	assert.Error(t, validateID("has space"))
	assert.Error(t, validateID("has/slash"))
}
