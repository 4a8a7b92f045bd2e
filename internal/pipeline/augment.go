package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/llm"
)

// Stage names used for feature scoping in config.LLMConfig.Features.
const (
	stageReader    = "reader"
	stagePlanner   = "planner"
	stageGenerator = "generator"
)

// Feature labels recorded in usage records.
const (
	featureReaderActions = "reader_actions"
	featurePlannerRoles  = "planner_roles"
	featureTitleOverview = "title_overview"
)

// Acceptance caps for LLM-proposed candidates. Anything past the cap
// is discarded.
const (
	maxLLMActions    = 20
	maxLLMConditions = 10
)

// Enhancer mediates optional LLM augmentation for the stages. A
// failure of any kind degrades to "not used": the outcome lands in a
// UsageRecord and never aborts a conversion. Construction errors are
// held and surfaced per call for the same reason.
type Enhancer struct {
	cfg         config.LLMConfig
	provider    llm.Provider
	providerErr error
}

// NewEnhancer builds the configured provider. A construction error is
// not fatal here; it is reported in every subsequent usage record.
func NewEnhancer(cfg config.LLMConfig) *Enhancer {
	provider, err := llm.New(cfg)
	return &Enhancer{cfg: cfg, provider: provider, providerErr: err}
}

// ProviderName reports the active provider name, or "stub" when
// augmentation is disabled.
func (e *Enhancer) ProviderName() string {
	switch {
	case !e.cfg.Enabled:
		return "stub"
	case e.provider != nil:
		return e.provider.Name()
	default:
		return e.cfg.Provider
	}
}

// begin seeds a usage record and runs the preflight checks shared by
// every augmentation site. ok reports whether the call should proceed.
func (e *Enhancer) begin(stage, feature, promptVersion, input string) (rec UsageRecord, ok bool) {
	rec = UsageRecord{
		Provider:      e.cfg.Provider,
		Model:         e.cfg.Model,
		Feature:       feature,
		PromptVersion: promptVersion,
	}
	if e.provider != nil {
		rec.Provider = e.provider.Name()
		rec.Model = e.provider.Model()
	}
	if !e.cfg.Enabled || !e.stageEnabled(stage) {
		return rec, false
	}
	rec.Enabled = true
	switch {
	case errors.Is(e.providerErr, llm.ErrUnsupportedProvider):
		rec.Error = "unsupported_provider"
	case strings.TrimSpace(input) == "":
		rec.Error = "empty_text"
	case errors.Is(e.providerErr, llm.ErrMissingAPIKey):
		rec.Error = "missing_api_key"
	case e.providerErr != nil:
		rec.Error = e.providerErr.Error()
	}
	return rec, rec.Error == ""
}

// stageEnabled applies the feature scoping from configuration. An
// empty feature list enables every stage.
func (e *Enhancer) stageEnabled(stage string) bool {
	if len(e.cfg.Features) == 0 {
		return true
	}
	for _, feature := range e.cfg.Features {
		if strings.EqualFold(strings.TrimSpace(feature), stage) {
			return true
		}
	}
	return false
}

// fetch runs one completion and decodes the JSON object in the
// response into out, finalizing the record's Used and Error fields.
func (e *Enhancer) fetch(ctx context.Context, rec *UsageRecord, prompt string, out interface{}) bool {
	response, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		rec.Error = err.Error()
		return false
	}
	payload, err := llm.ExtractJSONObject(response)
	if err != nil {
		rec.Error = "invalid_response"
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		rec.Error = "invalid_response"
		return false
	}
	rec.Used = true
	return true
}

// acceptPhrases keeps candidates that appear verbatim in input, up to
// limit, preserving order and dropping blanks and duplicates. The
// verbatim requirement bounds hallucination: the model can only point
// at text that is already there.
func acceptPhrases(candidates []string, input string, limit int) []string {
	accepted := []string{}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || !strings.Contains(input, candidate) {
			continue
		}
		if containsPhrase(accepted, candidate) {
			continue
		}
		accepted = append(accepted, candidate)
		if len(accepted) >= limit {
			break
		}
	}
	return accepted
}

// mergeUnique appends extras to base, keeping base order and dropping
// blanks and duplicates.
func mergeUnique(base, extra []string) []string {
	merged := []string{}
	for _, item := range base {
		if item != "" && !containsPhrase(merged, item) {
			merged = append(merged, item)
		}
	}
	for _, item := range extra {
		if item != "" && !containsPhrase(merged, item) {
			merged = append(merged, item)
		}
	}
	return merged
}

func containsPhrase(phrases []string, phrase string) bool {
	for _, existing := range phrases {
		if existing == phrase {
			return true
		}
	}
	return false
}
