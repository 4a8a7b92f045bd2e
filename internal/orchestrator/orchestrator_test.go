package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/config"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/logging"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/pipeline"
)

func newTestOrchestrator(logger *logging.Logger) *Orchestrator {
	enhancer := pipeline.NewEnhancer(config.LLMConfig{})
	cfg := config.PipelineConfig{MaxRetries: 2, WarningRetryLimit: 1}
	return New(enhancer, cfg, logger)
}

func logSteps(logs []AgentLog) []string {
	steps := make([]string, 0, len(logs))
	for _, log := range logs {
		steps = append(steps, log.Step)
	}
	return steps
}

func TestOrchestrator_Convert_CleanFirstAttempt(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.Convert(context.Background(), "経費を申請し、承認されたら精算し、鈴木さんに連絡して下さい。")

	require.NoError(t, err)
	require.NotNil(t, result)

	require.NoError(t, result.Definition.Validate())
	require.Len(t, result.Definition.Tasks, 4)

	// The contact action resolves its recipient from the detected person.
	contact := result.Definition.Tasks[3]
	assert.Equal(t, "鈴木さんに連絡して下さい", contact.Name)
	require.Len(t, contact.Recipients, 1)
	assert.Equal(t, "鈴木", contact.Recipients[0].Name)

	assert.Equal(t, []string{"reader", "planner", "validator", "generator"}, logSteps(result.AgentLogs))
	assert.Equal(t, "entities=1 actions=3 people=1", result.AgentLogs[0].Summary)
	assert.Equal(t, "tasks=4 roles=3 role_inference=4", result.AgentLogs[1].Summary)
	assert.Equal(t, "passed", result.AgentLogs[2].Summary)
	require.NotNil(t, result.AgentLogs[2].IssuesCount)
	assert.Equal(t, 0, *result.AgentLogs[2].IssuesCount)
	assert.Nil(t, result.AgentLogs[1].IssuesCount)
	assert.Equal(t, "tasks=4 roles=3", result.AgentLogs[3].Summary)

	meta := result.Meta
	_, parseErr := uuid.Parse(meta.ConversionID)
	assert.NoError(t, parseErr)
	assert.Equal(t, 0, meta.Retries)
	assert.Equal(t, "stub", meta.Model)
	assert.Equal(t, []string{"経費を申請する", "承認されたら精算する", "鈴木さんに連絡して下さい"}, meta.Actions)
	assert.Equal(t, "biz_v1", meta.ActionFilterVersion)
	assert.Equal(t, "ja_v1", meta.SplitterVersion)
	assert.False(t, meta.ActionFilterFallback)
	assert.True(t, meta.CompoundDetected)
	assert.Equal(t, []string{}, meta.ValidatorIssues)
	assert.Len(t, meta.RoleInference, 4)
	assert.False(t, meta.TokenPresent)

	// reader + planner + generator records, all disabled.
	require.Len(t, meta.LLMUsage, 3)
	for _, usage := range meta.LLMUsage {
		assert.False(t, usage.Enabled)
		assert.Equal(t, "stub", usage.Provider)
	}
}

func TestOrchestrator_Convert_ForceSplitRetryAcceptsWarnings(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.Convert(context.Background(), "申請されたら連絡する")

	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Meta.Retries)
	require.Len(t, result.Definition.Tasks, 2)
	assert.Equal(t, "申請されたら連絡する", result.Definition.Tasks[0].Name)
	assert.Equal(t, "申請されたら", result.Definition.Tasks[0].Trigger)
	assert.Equal(t, "連絡する", result.Definition.Tasks[1].Name)

	assert.Equal(t,
		[]string{"reader", "planner", "validator", "planner", "validator", "generator"},
		logSteps(result.AgentLogs))
	assert.Equal(t, "issues: compound_text_single_task", result.AgentLogs[2].Summary)
	require.NotNil(t, result.AgentLogs[2].IssuesCount)
	assert.Equal(t, 1, *result.AgentLogs[2].IssuesCount)
	assert.Equal(t, "issues: role_not_inferred", result.AgentLogs[4].Summary)

	// The accepted warning stays visible in the issue details.
	details, ok := result.Meta.ValidatorIssues.([]pipeline.Issue)
	require.True(t, ok, "validator_issues should carry details, got %T", result.Meta.ValidatorIssues)
	require.Len(t, details, 1)
	assert.Equal(t, "role_not_inferred", details[0].Code)
	assert.Equal(t, pipeline.SeverityWarning, details[0].Severity)

	require.Len(t, result.Meta.LLMUsage, 4)
}

func TestOrchestrator_Convert_ExhaustedRetriesFail(t *testing.T) {
	o := newTestOrchestrator(nil)

	// A clause the splitter cannot divide further keeps tripping the
	// compound check: punctuation marks the input compound, but there
	// is only one action and nothing was filtered.
	result, err := o.Convert(context.Background(), "精算を処理。")

	require.Error(t, err)
	assert.Nil(t, result)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 2, validationErr.Retries)
	assert.Equal(t, []string{"compound_text_single_task"}, validationErr.Issues)
	assert.Equal(t, "validation failed after 2 retries: [compound_text_single_task]", err.Error())
}

func TestOrchestrator_Convert_AvoidNonBusinessCorrective(t *testing.T) {
	tl := logging.NewTestLogger()
	o := newTestOrchestrator(tl.Logger)

	result, err := o.Convert(context.Background(), "おはようございます")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Meta.Retries)

	// The refiltered action list is empty, so the planner falls back
	// to the default task, which passes cleanly.
	require.Len(t, result.Definition.Tasks, 1)
	assert.Equal(t, "Process request", result.Definition.Tasks[0].Name)

	tl.AssertField(t, "retrying plan", "corrective", "avoid_non_business")
}

func TestOrchestrator_Convert_EnglishInput(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.Convert(context.Background(), "Approve expenses")

	require.NoError(t, err)

	// The keyword rules find neither roles nor trigger markers, so the
	// single task falls through to the Applicant default with an empty
	// trigger. The gated missing-trigger check does not flag it.
	require.Len(t, result.Definition.Tasks, 1)
	assert.Equal(t, "Approve expenses", result.Definition.Tasks[0].Name)
	assert.Equal(t, "Applicant", result.Definition.Tasks[0].Role)
	assert.Equal(t, "", result.Definition.Tasks[0].Trigger)
	assert.False(t, result.Meta.CompoundDetected)
	assert.Contains(t, logSteps(result.AgentLogs), "validator")
}

func TestOrchestrator_Convert_EmptyInput(t *testing.T) {
	o := newTestOrchestrator(nil)

	result, err := o.Convert(context.Background(), "   ")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Meta.Retries)
	assert.Equal(t, "Untitled Process", result.Definition.Title)
	assert.Equal(t, []string{"input is empty"}, result.Definition.Assumptions)
	assert.Equal(t, []string{}, result.Meta.Actions)
	require.Len(t, result.Definition.Tasks, 1)
	assert.Equal(t, "Process request", result.Definition.Tasks[0].Name)
}

func TestOrchestrator_Convert_LogsCarryConversionID(t *testing.T) {
	tl := logging.NewTestLogger()
	o := newTestOrchestrator(tl.Logger)

	result, err := o.Convert(context.Background(), "経費を申請して下さい")

	require.NoError(t, err)
	tl.AssertLogged(t, zapcore.InfoLevel, "conversion complete")
	tl.AssertField(t, "conversion complete", "conversion.id", result.Meta.ConversionID)
	tl.AssertField(t, "conversion complete", "retries", 0)
	tl.AssertNoSecrets(t)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Retries: 1, Issues: []string{"missing name in task_1", "roles missing"}}
	assert.Equal(t, "validation failed after 1 retries: [missing name in task_1 roles missing]", err.Error())
}

func TestValidatorSummary(t *testing.T) {
	assert.Equal(t, "passed", validatorSummary(nil))
	assert.Equal(t, "issues: a", validatorSummary([]string{"a"}))
	assert.Equal(t, "issues: a, b", validatorSummary([]string{"a", "b", "c"}))
}

func TestNextRetryContext_AccumulatesCorrectives(t *testing.T) {
	first := nextRetryContext(pipeline.RetryContext{}, 1, pipeline.ValidationResult{
		Issues: []string{"compound_text_single_task"},
	})
	assert.Equal(t, 1, first.Attempt)
	assert.True(t, first.Corrective.Has(pipeline.CorrectiveForceSplit))
	assert.False(t, first.Corrective.Has(pipeline.CorrectiveAvoidNonBusiness))
	assert.Equal(t, []string{"compound_text_single_task"}, first.PriorIssues)

	second := nextRetryContext(first, 2, pipeline.ValidationResult{
		Issues: []string{"non_business_task_detected"},
	})
	assert.Equal(t, 2, second.Attempt)
	assert.True(t, second.Corrective.Has(pipeline.CorrectiveForceSplit))
	assert.True(t, second.Corrective.Has(pipeline.CorrectiveAvoidNonBusiness))
	assert.Equal(t, []string{"non_business_task_detected"}, second.PriorIssues)
}
