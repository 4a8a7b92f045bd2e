package llm

import "context"

// noopProvider stands in when augmentation is disabled. Its model name
// surfaces in conversion metadata as "stub".
type noopProvider struct{}

// NewNoop returns the disabled provider.
func NewNoop() Provider {
	return noopProvider{}
}

func (noopProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrDisabled
}

func (noopProvider) Name() string { return "stub" }

func (noopProvider) Model() string { return "stub" }
