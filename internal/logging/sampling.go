package logging

import (
	"go.uber.org/zap/zapcore"
)

// newSampledCore applies sampling to entries below Error while letting
// Error and above through untouched. zap's sampler keys on message, so
// a single Initial/Thereafter pair (the Info setting) governs the
// sampled band.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	errorCore := &levelFilterCore{
		Core:     core,
		minLevel: zapcore.ErrorLevel,
		maxLevel: zapcore.FatalLevel,
	}

	belowErrorCore := &levelFilterCore{
		Core:     core,
		minLevel: TraceLevel,
		maxLevel: zapcore.WarnLevel,
	}

	initial, thereafter := 100, 100
	if lc, ok := cfg.Levels[zapcore.InfoLevel]; ok {
		initial, thereafter = lc.Initial, lc.Thereafter
	}

	sampled := zapcore.NewSamplerWithOptions(
		belowErrorCore,
		cfg.Tick,
		initial,
		thereafter,
	)

	return zapcore.NewTee(errorCore, sampled)
}

// levelFilterCore restricts a core to a closed level range.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
	maxLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(level zapcore.Level) bool {
	return level >= c.minLevel && level <= c.maxLevel && c.Core.Enabled(level)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:     c.Core.With(fields),
		minLevel: c.minLevel,
		maxLevel: c.maxLevel,
	}
}
