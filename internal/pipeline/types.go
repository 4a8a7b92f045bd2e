package pipeline

import (
	"strings"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

// Extraction is the Reader's structured view of the input. Later
// stages work from it exclusively and never re-parse the raw text.
type Extraction struct {
	Input              string        `json:"input_text"`
	Actions            []string      `json:"actions"`
	ActionsRaw         []string      `json:"actions_raw"`
	ActionsFilteredOut []string      `json:"actions_filtered_out"`
	FilterVersion      string        `json:"action_filter_version"`
	FallbackUsed       bool          `json:"action_filter_fallback"`
	Conditions         []string      `json:"conditions"`
	Entities           text.Entities `json:"entities_detail"`
	EntityNames        []string      `json:"entities"`
	Assumptions        []string      `json:"assumptions"`
	Exceptions         []string      `json:"exceptions"`
	SplitterVersion    string        `json:"splitter_version"`
}

// Task is one planner task candidate. Trigger distinguishes an
// explicit empty trigger (pointer to "") from an absent one (nil):
// the Generator fills its default only for absent triggers.
type Task struct {
	ID                string
	Name              string
	Role              string
	Trigger           *string
	Steps             []string
	ExceptionHandling []string
	Notifications     []string
	Recipients        []definition.Recipient
}

// TriggerValue returns the trigger, or "" when absent.
func (t Task) TriggerValue() string {
	if t.Trigger == nil {
		return ""
	}
	return *t.Trigger
}

// TaskPlan is the Planner's output: at least one task, the distinct
// roles those tasks use, and a trace of how each role was chosen.
type TaskPlan struct {
	Tasks []Task
	Roles []definition.Role
	Trace []InferenceTrace
}

// Trace sources.
const (
	TraceSourceRules = "rules"
	TraceSourceLLM   = "llm"
)

// InferenceTrace records how one task got its role.
type InferenceTrace struct {
	Action          string   `json:"action"`
	SourceAction    string   `json:"source_action"`
	InferredRole    string   `json:"inferred_role"`
	MatchedKeywords []string `json:"matched_keywords"`
	Source          string   `json:"source"`
}

// Corrective flags carry targeted retry hints from validation findings
// back into the Planner. Both flags can be active at once and they
// accumulate across attempts.
type Corrective uint8

const (
	CorrectiveNone Corrective = 0
	// CorrectiveForceSplit makes the Planner bisect a compound
	// sentence the segmenter under-split.
	CorrectiveForceSplit Corrective = 1 << 0
	// CorrectiveAvoidNonBusiness makes the Planner re-filter the raw
	// action list.
	CorrectiveAvoidNonBusiness Corrective = 1 << 1
)

// Has reports whether every flag in mask is set.
func (c Corrective) Has(mask Corrective) bool {
	return c&mask == mask
}

func (c Corrective) String() string {
	if c == CorrectiveNone {
		return "none"
	}
	var parts []string
	if c.Has(CorrectiveForceSplit) {
		parts = append(parts, "force_split")
	}
	if c.Has(CorrectiveAvoidNonBusiness) {
		parts = append(parts, "avoid_non_business")
	}
	return strings.Join(parts, "+")
}

// RetryContext threads retry state through the plan/validate loop.
// The zero value is the first attempt. There is no hidden state: the
// orchestrator builds a fresh value for every retry.
type RetryContext struct {
	Attempt     int
	PriorIssues []string
	Corrective  Corrective
}

// ValidationRequest bundles everything the Validator inspects.
type ValidationRequest struct {
	Plan               TaskPlan
	Input              string
	Actions            []string
	ActionsFilteredOut []string
	People             []text.Person
}

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one validation finding. Structural findings are reported as
// bare codes in ValidationResult.Issues and have no Issue record.
type Issue struct {
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Severity string                 `json:"severity"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// ValidationResult is the Validator's full report. The Validator never
// decides pass or fail; the orchestrator applies severity policy.
type ValidationResult struct {
	Issues           []string `json:"issues"`
	IssueDetails     []Issue  `json:"issue_details"`
	OpenQuestions    []string `json:"open_questions"`
	CompoundDetected bool     `json:"compound_detected"`
}

func (r *ValidationResult) addCode(code string) {
	r.Issues = append(r.Issues, code)
}

func (r *ValidationResult) addIssue(issue Issue) {
	r.Issues = append(r.Issues, issue.Code)
	r.IssueDetails = append(r.IssueDetails, issue)
}

// BlockingIssues returns the codes not flagged as warnings. A code
// with no detail record is blocking.
func (r ValidationResult) BlockingIssues() []string {
	warnings := make(map[string]bool, len(r.IssueDetails))
	for _, detail := range r.IssueDetails {
		if detail.Severity == SeverityWarning {
			warnings[detail.Code] = true
		}
	}
	blocking := []string{}
	for _, code := range r.Issues {
		if !warnings[code] {
			blocking = append(blocking, code)
		}
	}
	return blocking
}

// UsageRecord captures the outcome of one optional LLM call. Every
// failure mode lands here; none of them fails the stage.
type UsageRecord struct {
	Enabled         bool   `json:"enabled"`
	Used            bool   `json:"used"`
	Provider        string `json:"provider"`
	Model           string `json:"model"`
	Feature         string `json:"feature"`
	PromptVersion   string `json:"prompt_version"`
	Error           string `json:"error,omitempty"`
	AddedActions    int    `json:"added_actions,omitempty"`
	AddedConditions int    `json:"added_conditions,omitempty"`
	RoleHints       int    `json:"role_hints,omitempty"`
}
