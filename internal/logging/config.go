package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level that will be logged.
	Level zapcore.Level

	// Format selects the stdout encoder: "json" or "console".
	Format string

	// Output toggles individual cores.
	Output OutputConfig

	// Sampling caps log throughput per level.
	Sampling SamplingConfig

	// Caller annotates entries with file:line.
	Caller CallerConfig

	// Stacktrace attaches stacks at or above a level.
	Stacktrace StacktraceConfig

	// Fields are attached to every entry (e.g. service name).
	Fields map[string]string

	// Redaction masks sensitive values in string fields.
	Redaction RedactionConfig
}

// OutputConfig toggles the destinations logs are written to.
type OutputConfig struct {
	// Stdout enables the human/machine readable core on stdout.
	Stdout bool

	// OTEL enables the OpenTelemetry log bridge core.
	OTEL bool
}

// SamplingConfig bounds log volume. Errors are never sampled.
type SamplingConfig struct {
	Enabled bool

	// Tick is the sampling window.
	Tick time.Duration

	// Levels holds per-level initial/thereafter counts.
	Levels map[zapcore.Level]LevelSamplingConfig
}

// LevelSamplingConfig is a zap sampler setting for one level.
type LevelSamplingConfig struct {
	// Initial entries per tick are always logged.
	Initial int

	// Thereafter: after Initial, log every Nth entry. 0 drops the rest.
	Thereafter int
}

// CallerConfig controls caller annotation.
type CallerConfig struct {
	Enabled bool

	// Skip adjusts the callstack depth for wrappers.
	Skip int
}

// StacktraceConfig controls automatic stacktrace capture.
type StacktraceConfig struct {
	// Level at or above which stacks are attached. Empty disables.
	Level string
}

// RedactionConfig masks sensitive values before they reach any sink.
type RedactionConfig struct {
	Enabled bool

	// Fields are exact key names whose string values are replaced.
	Fields []string

	// Patterns are regexes applied to string values.
	Patterns []string
}

// NewDefaultConfig returns a production-leaning configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Output: OutputConfig{
			Stdout: true,
			OTEL:   false,
		},
		Sampling: SamplingConfig{
			Enabled: true,
			Tick:    time.Second,
			Levels:  DefaultLevelSamplingConfig(),
		},
		Caller: CallerConfig{
			Enabled: true,
			Skip:    1,
		},
		Stacktrace: StacktraceConfig{
			Level: "error",
		},
		Fields: map[string]string{
			"service": "bizflowd",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields:  []string{"api_key", "token", "authorization", "secret"},
		},
	}
}

// DefaultLevelSamplingConfig keeps info and debug bounded while warnings
// pass more freely. Error and above bypass the sampler entirely.
func DefaultLevelSamplingConfig() map[zapcore.Level]LevelSamplingConfig {
	return map[zapcore.Level]LevelSamplingConfig{
		zapcore.DebugLevel: {Initial: 10, Thereafter: 100},
		zapcore.InfoLevel:  {Initial: 100, Thereafter: 100},
		zapcore.WarnLevel:  {Initial: 100, Thereafter: 10},
	}
}

// Validate checks invariants that would otherwise surface as panics
// deep inside zap.
func (c Config) Validate() error {
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid format %q: must be json or console", c.Format)
	}
	if !c.Output.Stdout && !c.Output.OTEL {
		return fmt.Errorf("no log output enabled")
	}
	if c.Sampling.Enabled {
		if c.Sampling.Tick <= 0 {
			return fmt.Errorf("sampling tick must be positive, got %s", c.Sampling.Tick)
		}
		for level, lc := range c.Sampling.Levels {
			if lc.Initial < 0 || lc.Thereafter < 0 {
				return fmt.Errorf("sampling counts for %s must be non-negative", level)
			}
		}
	}
	if c.Caller.Skip < 0 {
		return fmt.Errorf("caller skip must be non-negative, got %d", c.Caller.Skip)
	}
	if c.Stacktrace.Level != "" {
		if _, err := LevelFromString(c.Stacktrace.Level); err != nil {
			return fmt.Errorf("invalid stacktrace level %q: %w", c.Stacktrace.Level, err)
		}
	}
	return nil
}
