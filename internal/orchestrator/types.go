package orchestrator

import (
	"fmt"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/pipeline"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

// AgentLog is a one-line operator-facing summary of one stage run.
// IssuesCount is set only on validator entries, including zero.
type AgentLog struct {
	Step        string `json:"step"`
	Summary     string `json:"summary"`
	IssuesCount *int   `json:"issues_count,omitempty"`
}

// Meta carries the diagnostic trail of a conversion: everything a
// caller needs to understand how the definition came to be without
// re-running the pipeline.
type Meta struct {
	ConversionID         string                    `json:"conversion_id"`
	Retries              int                       `json:"retries"`
	Model                string                    `json:"model"`
	Actions              []string                  `json:"actions"`
	ActionsRaw           []string                  `json:"actions_raw"`
	ActionsFilteredOut   []string                  `json:"actions_filtered_out"`
	ActionFilterVersion  string                    `json:"action_filter_version"`
	ActionFilterFallback bool                      `json:"action_filter_fallback"`
	Entities             text.Entities             `json:"entities"`
	RoleInference        []pipeline.InferenceTrace `json:"role_inference"`
	SplitterVersion      string                    `json:"splitter_version"`
	CompoundDetected     bool                      `json:"compound_detected"`
	// ValidatorIssues holds the issue detail records when the final
	// validation produced any, otherwise the bare code list.
	ValidatorIssues interface{}            `json:"validator_issues"`
	LLMUsage        []pipeline.UsageRecord `json:"llm_usage"`
	// TokenPresent is set by the HTTP layer when a Bearer token
	// accompanied the request. Presence only; never verified here.
	TokenPresent bool `json:"token_present,omitempty"`
}

// Result is a completed conversion.
type Result struct {
	Definition definition.BusinessDefinition `json:"definition"`
	AgentLogs  []AgentLog                    `json:"agent_logs"`
	Meta       Meta                          `json:"meta"`
}

// ValidationError reports that blocking issues survived the retry
// budget. The offending codes ride along for the API layer.
type ValidationError struct {
	Retries int
	Issues  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed after %d retries: %v", e.Retries, e.Issues)
}
