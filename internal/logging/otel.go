package logging

import (
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap/zapcore"
)

// newDualCore assembles the core stack: an optional stdout core, an
// optional OTEL bridge core, level sampling on top.
//
// The OTEL core picks up the globally registered LoggerProvider, so
// telemetry must be initialized before the logger when the bridge is
// enabled.
func newDualCore(cfg Config) (zapcore.Core, error) {
	cores := []zapcore.Core{}

	if cfg.Output.Stdout {
		encoder := newEncoder(cfg.Format)
		if cfg.Redaction.Enabled {
			redacting, err := NewRedactingEncoder(encoder, cfg.Redaction)
			if err != nil {
				return nil, fmt.Errorf("build redacting encoder: %w", err)
			}
			encoder = redacting
		}
		stdoutCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			cfg.Level,
		)
		cores = append(cores, stdoutCore)
	}

	if cfg.Output.OTEL {
		cores = append(cores, otelzap.NewCore("bizflowd"))
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no log output enabled")
	}

	core := zapcore.NewTee(cores...)

	if cfg.Sampling.Enabled {
		core = newSampledCore(core, cfg.Sampling)
	}

	return core, nil
}
