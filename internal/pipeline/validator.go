package pipeline

import (
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/roles"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

// Validator runs a fixed-order rule battery over a task plan: first
// the structural checks, then the heuristic ones. It collects every
// finding and never stops early. Severity policy belongs to the
// caller; the Validator only reports.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate inspects the plan against the extraction it came from.
func (v *Validator) Validate(req ValidationRequest) ValidationResult {
	result := ValidationResult{
		Issues:        []string{},
		IssueDetails:  []Issue{},
		OpenQuestions: []string{},
	}

	v.checkStructure(req.Plan, &result)
	result.CompoundDetected = text.IsCompound(req.Input, req.Actions)
	v.checkHeuristics(req, &result)
	return result
}

// checkStructure flags missing required fields. Structural findings
// are always blocking, so they carry no severity record.
func (v *Validator) checkStructure(plan TaskPlan, result *ValidationResult) {
	if len(plan.Tasks) == 0 {
		result.addCode("tasks missing")
		result.OpenQuestions = append(result.OpenQuestions, "What tasks are required?")
	} else {
		for _, task := range plan.Tasks {
			id := taskID(task)
			if task.Name == "" {
				result.addCode("missing name in " + id)
			}
			if task.Role == "" {
				result.addCode("missing role in " + id)
			}
			// Only an action phrased conditionally owes a trigger.
			if text.ContainsTriggerMarker(task.Name) && task.TriggerValue() == "" {
				result.addCode("missing trigger in " + id)
				result.OpenQuestions = append(result.OpenQuestions, "What triggers "+id+"?")
			}
			if len(task.Steps) == 0 {
				result.addCode("missing steps in " + id)
			}
		}
	}

	if len(plan.Roles) == 0 {
		result.addCode("roles missing")
		result.OpenQuestions = append(result.OpenQuestions, "Who is responsible for each task?")
	} else {
		for _, role := range plan.Roles {
			if role.Name == "" {
				result.addCode("role name missing")
				result.OpenQuestions = append(result.OpenQuestions, "What are the role names?")
			}
		}
	}
}

func (v *Validator) checkHeuristics(req ValidationRequest, result *ValidationResult) {
	tasks := req.Plan.Tasks

	var offending []string
	for _, task := range tasks {
		if text.ContainsNonBusinessKeyword(task.Name) && !text.ContainsBusinessKeyword(task.Name) {
			offending = append(offending, taskID(task))
		}
	}
	if len(offending) > 0 {
		result.addIssue(Issue{
			Code:     "non_business_task_detected",
			Message:  "task names look like non-business chatter",
			Severity: SeverityWarning,
			Data:     map[string]interface{}{"tasks": offending},
		})
	}

	if len(tasks) >= 2 && distinctRoleCount(tasks) == 1 {
		result.addIssue(Issue{
			Code:     "role_not_inferred",
			Message:  "multiple tasks share a single inferred role",
			Severity: SeverityWarning,
		})
	}

	// Only an error when the single-task outcome cannot be explained
	// by legitimate filtering.
	if result.CompoundDetected && len(tasks) == 1 &&
		(len(req.Actions) >= 2 || len(req.ActionsFilteredOut) == 0) {
		result.addIssue(Issue{
			Code:     "compound_text_single_task",
			Message:  "compound input produced a single task",
			Severity: SeverityError,
		})
	}

	if len(tasks) >= 2 && identicalNonEmptyTriggers(tasks) {
		result.addIssue(Issue{
			Code:     "suspicious_global_trigger",
			Message:  "every task carries the same trigger",
			Severity: SeverityWarning,
		})
	}

	for _, task := range tasks {
		if roles.ContainsContactKeyword(task.Name) && len(req.People) > 0 && len(task.Recipients) == 0 {
			result.addIssue(Issue{
				Code:     "notification_without_recipient",
				Message:  "contact task has no recipients despite known people",
				Severity: SeverityWarning,
				Data:     map[string]interface{}{"task": taskID(task)},
			})
		}
	}
}

func taskID(task Task) string {
	if task.ID == "" {
		return "unknown_task"
	}
	return task.ID
}

func distinctRoleCount(tasks []Task) int {
	seen := map[string]bool{}
	for _, task := range tasks {
		seen[task.Role] = true
	}
	return len(seen)
}

func identicalNonEmptyTriggers(tasks []Task) bool {
	first := tasks[0].TriggerValue()
	if first == "" {
		return false
	}
	for _, task := range tasks[1:] {
		if task.TriggerValue() != first {
			return false
		}
	}
	return true
}
