// Package logging provides structured, context-aware logging for bizflow
// services on top of go.uber.org/zap.
//
// The Logger wraps zap with methods that take a context.Context and attach
// correlation fields automatically: the active OpenTelemetry trace/span ids,
// the HTTP request id and the conversion id, when present.
//
// Output goes to stdout (JSON or console encoding) and optionally to an
// OpenTelemetry LoggerProvider through the otelzap bridge. A custom
// TraceLevel below Debug is available for wire-level detail. Sensitive
// fields and value patterns are redacted by the encoder; use the Secret
// field helper for credentials.
//
// Input text, prompts and raw LLM responses are never logged by this
// package's callers; log lengths and counts instead.
//
// Basic usage:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//		panic(err)
//	}
//	defer logger.Sync()
//
//	logger.Info(ctx, "conversion accepted",
//		zap.Int("actions", n),
//	)
package logging
