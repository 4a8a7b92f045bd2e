// Package llm provides completion providers for optional pipeline
// augmentation. Providers are additive: the rule-based pipeline is
// correct without them, so callers record provider failures instead of
// propagating them.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
)

// Provider produces a completion for a prompt.
type Provider interface {
	// Complete generates a completion. Implementations rate-limit and
	// retry transient failures internally.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider ("openai", "gemini", "stub").
	Name() string

	// Model is the configured model identifier.
	Model() string
}

// Sentinel errors surfaced into usage records by callers.
var (
	ErrDisabled            = errors.New("llm augmentation disabled")
	ErrMissingAPIKey       = errors.New("missing api key")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Default configuration values.
const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.0-flash"
	defaultGeminiURL   = "https://generativelanguage.googleapis.com"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBaseBackoff = 1 * time.Second
)

// Rate limiter defaults: 50 requests per minute.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// New builds the provider named by cfg. Disabled configs yield the
// no-op provider. Construction errors (missing credentials, unknown
// provider) are returned so callers can record them per call.
func New(cfg config.LLMConfig) (Provider, error) {
	if !cfg.Enabled {
		return NewNoop(), nil
	}
	switch cfg.Provider {
	case "", "none":
		return NewNoop(), nil
	case "openai":
		return newOpenAIProvider(cfg)
	case "gemini":
		return newGeminiProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// retryableError wraps an error to indicate it can be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryableError checks if an error should be retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var re *retryableError
	return errors.As(err, &re)
}
