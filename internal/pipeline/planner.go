package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/roles"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

// Planner decomposes an extraction into concrete tasks and roles. It
// refuses to pass ambiguity through: compound actions become separate
// tasks, and there is always at least one task and one role.
type Planner struct {
	inferencer *roles.Inferencer
	enhancer   *Enhancer
}

func NewPlanner(inferencer *roles.Inferencer, enhancer *Enhancer) *Planner {
	return &Planner{inferencer: inferencer, enhancer: enhancer}
}

// Plan turns the extraction into a task plan. Corrective flags from a
// previous validation round adjust the action list before planning.
func (p *Planner) Plan(ctx context.Context, ext Extraction, retry RetryContext) (TaskPlan, UsageRecord) {
	actions := ext.Actions
	if retry.Corrective.Has(CorrectiveAvoidNonBusiness) && len(ext.ActionsRaw) > 0 {
		actions = text.Filter(ext.ActionsRaw)
	}
	if retry.Corrective.Has(CorrectiveForceSplit) && len(actions) <= 1 {
		first := ""
		if len(actions) == 1 {
			first = actions[0]
		}
		actions = forceSplit(first, ext.Input)
	}

	llmActions, roleHints, usage := p.refine(ctx, ext.Input, actions)
	if len(llmActions) > 0 {
		actions = mergeUnique(actions, llmActions)
	}

	plan := TaskPlan{Tasks: []Task{}, Trace: []InferenceTrace{}}
	taskIndex := 1
	for _, action := range actions {
		ruleInferences := p.inferencer.Infer(action)
		inferences := ruleInferences
		source := TraceSourceRules
		if hinted, ok := roleHints[action]; ok {
			inferences = []roles.Inference{{Role: hinted, Keywords: keywordsFor(ruleInferences, hinted)}}
			source = TraceSourceLLM
		}

		for _, expansion := range p.inferencer.Expand(action, inferences) {
			name := expansion.Action
			if name == "" {
				name = "Process request"
			}
			steps := []string{expansion.Action}
			if expansion.Action == "" {
				steps = []string{"Review input"}
			}
			trigger := text.ExtractTrigger(expansion.Action)
			plan.Tasks = append(plan.Tasks, Task{
				ID:                fmt.Sprintf("task_%d", taskIndex),
				Name:              name,
				Role:              expansion.Role,
				Trigger:           &trigger,
				Steps:             steps,
				ExceptionHandling: []string{"Escalate if data is missing"},
				Notifications:     []string{"Notify requester"},
				// Recipients come from the original action: an expanded
				// approval step must not inherit the notification targets.
				Recipients: p.inferencer.Recipients(action, expansion.Role, ext.Entities.People),
			})
			plan.Trace = append(plan.Trace, InferenceTrace{
				Action:          expansion.Action,
				SourceAction:    action,
				InferredRole:    expansion.Role,
				MatchedKeywords: expansion.Keywords,
				Source:          source,
			})
			taskIndex++
		}
	}

	if len(plan.Tasks) == 0 {
		trigger := ""
		plan.Tasks = append(plan.Tasks, Task{
			ID:                "task_1",
			Name:              "Process request",
			Role:              roles.Applicant,
			Trigger:           &trigger,
			Steps:             []string{"Review input", "Record outcome"},
			ExceptionHandling: []string{"Escalate if data is missing"},
			Notifications:     []string{"Notify requester"},
			Recipients:        []definition.Recipient{},
		})
	}

	plan.Roles = buildRoleList(plan.Tasks)
	return plan, usage
}

// refine asks the provider for extra actions and per-action role
// hints. A hint is accepted only when its action appears verbatim in
// the input and its role is in the known vocabulary.
func (p *Planner) refine(ctx context.Context, input string, actions []string) ([]string, map[string]string, UsageRecord) {
	rec, ok := p.enhancer.begin(stagePlanner, featurePlannerRoles, plannerPromptVersion, input)
	if !ok {
		return nil, nil, rec
	}

	var proposal struct {
		Actions   []string `json:"actions"`
		RoleHints []struct {
			Action string `json:"action"`
			Role   string `json:"role"`
		} `json:"role_hints"`
	}
	if !p.enhancer.fetch(ctx, &rec, plannerPrompt(input, actions), &proposal) {
		return nil, nil, rec
	}

	llmActions := acceptPhrases(proposal.Actions, input, maxLLMActions)

	accepted := 0
	hints := map[string]string{}
	for _, hint := range proposal.RoleHints {
		action := strings.TrimSpace(hint.Action)
		role := strings.TrimSpace(hint.Role)
		if action == "" || role == "" {
			continue
		}
		if !strings.Contains(input, action) || !allowedHintRole(role) {
			continue
		}
		hints[action] = role
		accepted++
	}

	rec.AddedActions = len(llmActions)
	rec.RoleHints = accepted
	return llmActions, hints, rec
}

func allowedHintRole(role string) bool {
	switch role {
	case roles.Applicant, roles.Approver, roles.Accounting, roles.Operator:
		return true
	}
	return false
}

// keywordsFor returns the rule-matched keywords for role, or an empty
// list when the rules never matched it.
func keywordsFor(inferences []roles.Inference, role string) []string {
	for _, inference := range inferences {
		if inference.Role == role {
			return inference.Keywords
		}
	}
	return []string{}
}

// forceSplit bisects a compound sentence the segmenter under-split:
// the trigger clause stays on the first candidate and the remainder
// becomes a second one.
func forceSplit(action, input string) []string {
	candidates := []string{}
	if cleaned := strings.TrimSpace(action); cleaned != "" {
		candidates = append(candidates, cleaned)
	} else if cleaned := strings.TrimSpace(input); cleaned != "" {
		candidates = append(candidates, cleaned)
	}

	if len(candidates) > 0 {
		if trigger := text.ExtractTrigger(candidates[0]); trigger != "" {
			remainder := strings.TrimSpace(strings.Replace(candidates[0], trigger, "", 1))
			if remainder != "" && remainder != candidates[0] {
				candidates = append(candidates, remainder)
			}
		}
	}

	if len(candidates) == 0 {
		return []string{"Process request"}
	}
	return candidates
}

// buildRoleList collects the distinct task roles in first-appearance
// order, attaching canonical responsibilities.
func buildRoleList(tasks []Task) []definition.Role {
	seen := map[string]bool{}
	defs := []definition.Role{}
	for _, task := range tasks {
		if seen[task.Role] {
			continue
		}
		seen[task.Role] = true
		defs = append(defs, definition.Role{
			Name:             task.Role,
			Responsibilities: roles.Responsibilities(task.Role),
		})
	}
	return defs
}
