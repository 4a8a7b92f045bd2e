package pipeline

import (
	"context"
	"strings"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

// Reader extracts actions, conditions, and entities from raw text. It
// does not produce final output and never fills gaps with guesses:
// every candidate, rule-based or LLM-proposed, appears verbatim in the
// input.
type Reader struct {
	enhancer *Enhancer
}

func NewReader(enhancer *Enhancer) *Reader {
	return &Reader{enhancer: enhancer}
}

// Read extracts structured candidates from input. A blank input yields
// empty lists and the single assumption "input is empty".
func (r *Reader) Read(ctx context.Context, input string) (Extraction, UsageRecord) {
	cleaned := strings.TrimSpace(input)
	ext := Extraction{
		Input:           cleaned,
		FilterVersion:   text.FilterVersion,
		SplitterVersion: text.SplitterVersion,
	}

	if cleaned == "" {
		ext.Actions = []string{}
		ext.ActionsRaw = []string{}
		ext.ActionsFilteredOut = []string{}
		ext.Conditions = []string{}
		ext.Entities = text.Extract("")
		ext.EntityNames = []string{}
		ext.Assumptions = []string{"input is empty"}
		ext.Exceptions = []string{}
		_, _, usage := r.enhance(ctx, "", nil, nil)
		return ext, usage
	}

	entities := text.Extract(cleaned)
	names := []string{}
	for _, person := range entities.People {
		if person.Name != "" {
			names = append(names, person.Name)
		}
	}

	actionsRaw := text.Split(cleaned)
	filtered := text.Filter(actionsRaw)
	filteredOut := diffPhrases(actionsRaw, filtered)

	actions := filtered
	fallback := false
	if len(actions) == 0 && len(actionsRaw) > 0 {
		// The filter must never leave the pipeline with nothing to
		// plan when the segmenter found something.
		actions = actionsRaw
		fallback = true
	}

	conditions := extractConditions(actions)

	llmActions, llmConditions, usage := r.enhance(ctx, cleaned, actions, conditions)
	if len(llmActions) > 0 {
		actions = mergeUnique(actions, llmActions)
		if len(llmConditions) == 0 {
			llmConditions = extractConditions(llmActions)
		}
	}
	if len(llmConditions) > 0 {
		conditions = mergeUnique(conditions, llmConditions)
	}

	ext.Actions = actions
	ext.ActionsRaw = actionsRaw
	ext.ActionsFilteredOut = filteredOut
	ext.FallbackUsed = fallback
	ext.Conditions = conditions
	ext.Entities = entities
	ext.EntityNames = names
	if len(ext.EntityNames) == 0 {
		ext.EntityNames = []string{"requester", "operator"}
	}
	ext.Assumptions = []string{"input is complete"}
	ext.Exceptions = []string{"missing required data"}
	return ext, usage
}

// enhance asks the provider for extra actions and conditions. Accepted
// actions additionally pass the business filter unless that would
// discard all of them.
func (r *Reader) enhance(ctx context.Context, input string, actions, conditions []string) ([]string, []string, UsageRecord) {
	rec, ok := r.enhancer.begin(stageReader, featureReaderActions, readerPromptVersion, input)
	if !ok {
		return nil, nil, rec
	}

	var proposal struct {
		Actions    []string `json:"actions"`
		Conditions []string `json:"conditions"`
	}
	if !r.enhancer.fetch(ctx, &rec, readerPrompt(input, actions, conditions), &proposal) {
		return nil, nil, rec
	}

	llmActions := acceptPhrases(proposal.Actions, input, maxLLMActions)
	if filtered := text.Filter(llmActions); len(filtered) > 0 {
		llmActions = filtered
	}
	llmConditions := acceptPhrases(proposal.Conditions, input, maxLLMConditions)

	rec.AddedActions = len(llmActions)
	rec.AddedConditions = len(llmConditions)
	return llmActions, llmConditions, rec
}

// extractConditions collects the distinct trigger phrases of actions,
// preserving first-appearance order.
func extractConditions(actions []string) []string {
	conditions := []string{}
	for _, action := range actions {
		phrase := text.ExtractTrigger(action)
		if phrase != "" && !containsPhrase(conditions, phrase) {
			conditions = append(conditions, phrase)
		}
	}
	return conditions
}

// diffPhrases returns the entries of raw absent from kept, in order.
func diffPhrases(raw, kept []string) []string {
	keptSet := make(map[string]bool, len(kept))
	for _, phrase := range kept {
		keptSet[phrase] = true
	}
	removed := []string{}
	for _, phrase := range raw {
		if !keptSet[phrase] {
			removed = append(removed, phrase)
		}
	}
	return removed
}
