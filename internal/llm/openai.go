package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
)

// openAIProvider completes prompts through the OpenAI chat API via
// langchaingo.
type openAIProvider struct {
	llm     *openai.LLM
	model   string
	limiter *rate.Limiter
}

func newOpenAIProvider(cfg config.LLMConfig) (Provider, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey.Value()),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &openAIProvider{
		llm:     client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}, nil
}

// Complete generates a completion from the given prompt.
func (p *openAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, p.llm, prompt,
		llms.WithTemperature(defaultTemperature),
		llms.WithMaxTokens(defaultMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	return response, nil
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Model() string { return p.model }

var _ Provider = (*openAIProvider)(nil)
