package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/roles"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

func newTestPlanner(e *Enhancer) *Planner {
	return NewPlanner(roles.NewInferencer(), e)
}

func TestPlanner_Plan_ExpandsMultiRoleAction(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:   "承認されたら精算する",
		Actions: []string{"承認されたら精算する"},
	}

	plan, usage := p.Plan(context.Background(), ext, RetryContext{})

	require.Len(t, plan.Tasks, 2)

	approval := plan.Tasks[0]
	assert.Equal(t, "task_1", approval.ID)
	assert.Equal(t, "承認する", approval.Name)
	assert.Equal(t, roles.Approver, approval.Role)
	require.NotNil(t, approval.Trigger)
	assert.Equal(t, "", *approval.Trigger)
	assert.Equal(t, []string{"承認する"}, approval.Steps)

	settlement := plan.Tasks[1]
	assert.Equal(t, "task_2", settlement.ID)
	assert.Equal(t, "承認されたら精算する", settlement.Name)
	assert.Equal(t, roles.Accounting, settlement.Role)
	require.NotNil(t, settlement.Trigger)
	assert.Equal(t, "承認されたら", *settlement.Trigger)

	require.Len(t, plan.Roles, 2)
	assert.Equal(t, roles.Approver, plan.Roles[0].Name)
	assert.Equal(t, []string{"Approve or reject requests"}, plan.Roles[0].Responsibilities)
	assert.Equal(t, roles.Accounting, plan.Roles[1].Name)

	require.Len(t, plan.Trace, 2)
	assert.Equal(t, "承認する", plan.Trace[0].Action)
	assert.Equal(t, "承認されたら精算する", plan.Trace[0].SourceAction)
	assert.Equal(t, []string{"承認"}, plan.Trace[0].MatchedKeywords)
	assert.Equal(t, TraceSourceRules, plan.Trace[0].Source)

	assert.False(t, usage.Enabled)
}

func TestPlanner_Plan_ZeroActionsYieldsDefaultTask(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())

	plan, _ := p.Plan(context.Background(), Extraction{Input: ""}, RetryContext{})

	require.Len(t, plan.Tasks, 1)
	task := plan.Tasks[0]
	assert.Equal(t, "task_1", task.ID)
	assert.Equal(t, "Process request", task.Name)
	assert.Equal(t, roles.Applicant, task.Role)
	require.NotNil(t, task.Trigger)
	assert.Equal(t, "", *task.Trigger)
	assert.Equal(t, []string{"Review input", "Record outcome"}, task.Steps)

	require.Len(t, plan.Roles, 1)
	assert.Equal(t, roles.Applicant, plan.Roles[0].Name)
	assert.Empty(t, plan.Trace)
}

func TestPlanner_Plan_ForceSplitBisectsCompoundAction(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:   "申請されたら連絡する",
		Actions: []string{"申請されたら連絡する"},
	}
	retry := RetryContext{Attempt: 1, Corrective: CorrectiveForceSplit}

	plan, _ := p.Plan(context.Background(), ext, retry)

	require.Len(t, plan.Tasks, 2)
	assert.Equal(t, "申請されたら連絡する", plan.Tasks[0].Name)
	assert.Equal(t, "申請されたら", plan.Tasks[0].TriggerValue())
	assert.Equal(t, "連絡する", plan.Tasks[1].Name)
	assert.Equal(t, "", plan.Tasks[1].TriggerValue())

	for _, task := range plan.Tasks {
		assert.Equal(t, roles.Applicant, task.Role)
	}
}

func TestPlanner_Plan_ForceSplitSkippedWhenAlreadySplit(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:   "経費を申請する。承認する。",
		Actions: []string{"経費を申請する", "承認する"},
	}
	retry := RetryContext{Attempt: 1, Corrective: CorrectiveForceSplit}

	plan, _ := p.Plan(context.Background(), ext, retry)

	names := make([]string, 0, len(plan.Tasks))
	for _, task := range plan.Tasks {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"経費を申請する", "承認する"}, names)
}

func TestPlanner_Plan_AvoidNonBusinessRefilters(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:      "おはようございます今日もよろしくお願いします。経費を申請して下さい。",
		Actions:    []string{"おはようございます今日もよろしくお願いします", "経費を申請して下さい"},
		ActionsRaw: []string{"おはようございます今日もよろしくお願いします", "経費を申請して下さい"},
	}
	retry := RetryContext{Attempt: 1, Corrective: CorrectiveAvoidNonBusiness}

	plan, _ := p.Plan(context.Background(), ext, retry)

	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "経費を申請して下さい", plan.Tasks[0].Name)
}

func TestPlanner_Plan_CorrectivesCombine(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:      "おはようございます。申請されたら連絡して下さい。",
		Actions:    []string{"おはようございます", "申請されたら連絡して下さい"},
		ActionsRaw: []string{"おはようございます", "申請されたら連絡して下さい"},
	}
	retry := RetryContext{
		Attempt:    2,
		Corrective: CorrectiveForceSplit | CorrectiveAvoidNonBusiness,
	}

	// Refiltering first leaves a single action, so the force split
	// still applies to it.
	plan, _ := p.Plan(context.Background(), ext, retry)

	require.Len(t, plan.Tasks, 2)
	assert.Equal(t, "申請されたら連絡して下さい", plan.Tasks[0].Name)
	assert.Equal(t, "連絡して下さい", plan.Tasks[1].Name)
}

func TestPlanner_Plan_RoleHintOverridesRules(t *testing.T) {
	fake := &fakeProvider{
		response: `{"actions": [], "role_hints": [
			{"action": "鈴木さんに連絡して下さい", "role": "Operator"},
			{"action": "出張を手配する", "role": "Approver"},
			{"action": "鈴木さんに連絡して下さい", "role": "Boss"}
		]}`,
	}
	p := newTestPlanner(enhancerWith(fake))
	ext := Extraction{
		Input:   "鈴木さんに連絡して下さい",
		Actions: []string{"鈴木さんに連絡して下さい"},
	}

	plan, usage := p.Plan(context.Background(), ext, RetryContext{})

	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, roles.Operator, plan.Tasks[0].Role)

	require.Len(t, plan.Trace, 1)
	assert.Equal(t, TraceSourceLLM, plan.Trace[0].Source)
	assert.Equal(t, roles.Operator, plan.Trace[0].InferredRole)
	assert.Equal(t, []string{}, plan.Trace[0].MatchedKeywords)

	require.Len(t, plan.Roles, 1)
	assert.Equal(t, roles.Operator, plan.Roles[0].Name)
	assert.Equal(t, []string{"Handle requests"}, plan.Roles[0].Responsibilities)

	assert.True(t, usage.Used)
	assert.Equal(t, featurePlannerRoles, usage.Feature)
	assert.Equal(t, 1, usage.RoleHints)
	assert.Equal(t, 0, usage.AddedActions)
}

func TestPlanner_Plan_HintedRuleRoleKeepsKeywords(t *testing.T) {
	fake := &fakeProvider{
		response: `{"role_hints": [{"action": "経費を申請する", "role": "Applicant"}]}`,
	}
	p := newTestPlanner(enhancerWith(fake))
	ext := Extraction{
		Input:   "経費を申請する",
		Actions: []string{"経費を申請する"},
	}

	plan, _ := p.Plan(context.Background(), ext, RetryContext{})

	require.Len(t, plan.Trace, 1)
	assert.Equal(t, TraceSourceLLM, plan.Trace[0].Source)
	assert.Equal(t, []string{"申請"}, plan.Trace[0].MatchedKeywords)
}

func TestPlanner_Plan_MergesLLMActions(t *testing.T) {
	fake := &fakeProvider{
		response: `{"actions": ["追加の申請を提出する"], "role_hints": []}`,
	}
	p := newTestPlanner(enhancerWith(fake))
	ext := Extraction{
		Input:   "経費を申請して下さい。追加の申請を提出する作業もあります。",
		Actions: []string{"経費を申請して下さい"},
	}

	plan, usage := p.Plan(context.Background(), ext, RetryContext{})

	require.Len(t, plan.Tasks, 2)
	assert.Equal(t, "経費を申請して下さい", plan.Tasks[0].Name)
	assert.Equal(t, "追加の申請を提出する", plan.Tasks[1].Name)
	assert.Equal(t, 1, usage.AddedActions)
}

func TestPlanner_Plan_RecipientsResolvedFromSourceAction(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:   "承認を申請して鈴木さんに連絡する",
		Actions: []string{"承認を申請して鈴木さんに連絡する"},
		Entities: text.Entities{
			People: []text.Person{{Name: "鈴木", Surface: "鈴木さん", Type: "person"}},
		},
	}

	plan, _ := p.Plan(context.Background(), ext, RetryContext{})

	require.Len(t, plan.Tasks, 2)

	// The expanded approval step never notifies anyone.
	assert.Equal(t, roles.Approver, plan.Tasks[0].Role)
	assert.Empty(t, plan.Tasks[0].Recipients)

	assert.Equal(t, roles.Applicant, plan.Tasks[1].Role)
	require.Len(t, plan.Tasks[1].Recipients, 1)
	assert.Equal(t, "鈴木", plan.Tasks[1].Recipients[0].Name)
	assert.Equal(t, "鈴木さん", plan.Tasks[1].Recipients[0].Surface)
}

func TestPlanner_Plan_EveryTaskHasExplicitTrigger(t *testing.T) {
	p := newTestPlanner(disabledEnhancer())
	ext := Extraction{
		Input:   "経費を申請し、承認されたら精算し、鈴木さんに連絡して下さい。",
		Actions: []string{"経費を申請する", "承認されたら精算する", "鈴木さんに連絡して下さい"},
	}

	plan, _ := p.Plan(context.Background(), ext, RetryContext{})

	require.NotEmpty(t, plan.Tasks)
	for _, task := range plan.Tasks {
		assert.NotNil(t, task.Trigger, "task %s", task.ID)
		assert.NotEmpty(t, task.Steps, "task %s", task.ID)
		assert.NotEmpty(t, task.ExceptionHandling, "task %s", task.ID)
		assert.NotEmpty(t, task.Notifications, "task %s", task.ID)
		assert.NotNil(t, task.Recipients, "task %s", task.ID)
	}
}

func TestForceSplit(t *testing.T) {
	tests := []struct {
		name   string
		action string
		input  string
		want   []string
	}{
		{
			name:   "trigger clause separated",
			action: "申請されたら連絡する",
			want:   []string{"申請されたら連絡する", "連絡する"},
		},
		{
			name:   "falls back to input when action blank",
			action: "  ",
			input:  "承認されたら精算する",
			want:   []string{"承認されたら精算する", "精算する"},
		},
		{
			name:   "no trigger keeps single candidate",
			action: "経費を申請する",
			want:   []string{"経費を申請する"},
		},
		{
			name: "nothing to split",
			want: []string{"Process request"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, forceSplit(tt.action, tt.input))
		})
	}
}
