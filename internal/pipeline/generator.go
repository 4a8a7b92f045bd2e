package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
)

// Generator assembles the final definition from the accepted plan,
// filling defaults so the strict schema always has material to accept.
// It adds nothing outside the schema.
type Generator struct {
	enhancer *Enhancer
}

func NewGenerator(enhancer *Enhancer) *Generator {
	return &Generator{enhancer: enhancer}
}

// Generate builds the business definition. The output must satisfy the
// strict schema; a violation is a hard error, never silently patched.
func (g *Generator) Generate(ctx context.Context, ext Extraction, plan TaskPlan, validation ValidationResult) (definition.BusinessDefinition, UsageRecord, error) {
	title := defaultTitle(ext.Input)
	overview := "Generated business definition for: " + title

	llmTitle, llmOverview, usage := g.titleOverview(ctx, ext.Input)
	if llmTitle != "" && llmOverview != "" {
		title = llmTitle
		overview = llmOverview
	}

	roleDefs := buildRoleDefs(plan.Roles)
	def := definition.BusinessDefinition{
		Title:         title,
		Overview:      overview,
		Tasks:         buildTaskDefs(plan.Tasks, roleDefs, ext.Conditions),
		Roles:         roleDefs,
		Assumptions:   ext.Assumptions,
		OpenQuestions: validation.OpenQuestions,
	}
	if len(def.Assumptions) == 0 {
		def.Assumptions = []string{"input is complete"}
	}
	if def.OpenQuestions == nil {
		def.OpenQuestions = []string{}
	}

	if err := def.Validate(); err != nil {
		return definition.BusinessDefinition{}, usage, fmt.Errorf("generated definition rejected: %w", err)
	}
	return def, usage, nil
}

// titleOverview asks the provider for a title and overview pair. Both
// fields are required; a partial response keeps the defaults.
func (g *Generator) titleOverview(ctx context.Context, input string) (string, string, UsageRecord) {
	rec, ok := g.enhancer.begin(stageGenerator, featureTitleOverview, generatorPromptVersion, input)
	if !ok {
		return "", "", rec
	}

	var proposal struct {
		Title    string `json:"title"`
		Overview string `json:"overview"`
	}
	if !g.enhancer.fetch(ctx, &rec, generatorPrompt(input), &proposal) {
		return "", "", rec
	}

	title := normalizeLLMText(proposal.Title, 60)
	overview := normalizeLLMText(proposal.Overview, 120)
	if title == "" || overview == "" {
		rec.Used = false
		rec.Error = "missing_fields"
		return "", "", rec
	}
	return title, overview, rec
}

// normalizeLLMText trims value and truncates it to limit runes, with
// an ellipsis marking the cut.
func normalizeLLMText(value string, limit int) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return ""
	}
	runes := []rune(cleaned)
	if len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return cleaned
}

// defaultTitle is the first line of the input, truncated to 60 runes.
func defaultTitle(input string) string {
	cleaned := strings.TrimSpace(input)
	if cleaned == "" {
		return "Untitled Process"
	}
	firstLine := cleaned
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		firstLine = cleaned[:idx]
	}
	firstLine = strings.TrimSpace(firstLine)
	runes := []rune(firstLine)
	if len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return firstLine
}

// buildRoleDefs coerces the planner roles, defaulting blank fields.
// An empty plan still yields one role so the schema can hold.
func buildRoleDefs(planRoles []definition.Role) []definition.Role {
	defs := make([]definition.Role, 0, len(planRoles))
	for _, role := range planRoles {
		name := role.Name
		if name == "" {
			name = "Operator"
		}
		responsibilities := role.Responsibilities
		if len(responsibilities) == 0 {
			responsibilities = []string{"Handle requests"}
		}
		defs = append(defs, definition.Role{Name: name, Responsibilities: responsibilities})
	}
	if len(defs) == 0 {
		defs = append(defs, definition.Role{
			Name:             "Operator",
			Responsibilities: []string{"Handle incoming requests"},
		})
	}
	return defs
}

// buildTaskDefs coerces the planner tasks. The default trigger is the
// first extracted condition when one exists.
func buildTaskDefs(planTasks []Task, roleDefs []definition.Role, conditions []string) []definition.Task {
	defaultRole := "Operator"
	if len(roleDefs) > 0 {
		defaultRole = roleDefs[0].Name
	}
	defaultTrigger := "when request is received"
	if len(conditions) > 0 {
		defaultTrigger = conditions[0]
	}

	defs := make([]definition.Task, 0, len(planTasks))
	for _, task := range planTasks {
		defs = append(defs, coerceTask(task, defaultRole, defaultTrigger))
	}
	if len(defs) == 0 {
		defs = append(defs, definition.Task{
			ID:                "task_1",
			Name:              "Process request",
			Role:              defaultRole,
			Trigger:           defaultTrigger,
			Steps:             []string{"Review input", "Record outcome"},
			ExceptionHandling: []string{"Escalate if data is missing"},
			Notifications:     []string{"Notify requester"},
			Recipients:        []definition.Recipient{},
		})
	}
	return defs
}

// coerceTask fills the blanks in one planner task. An absent trigger
// takes the default; an explicit empty trigger is kept as-is.
func coerceTask(task Task, defaultRole, defaultTrigger string) definition.Task {
	id := task.ID
	if id == "" {
		id = "task_1"
	}
	name := task.Name
	if name == "" {
		name = "Process request"
	}
	role := task.Role
	if role == "" {
		role = defaultRole
	}
	trigger := defaultTrigger
	if task.Trigger != nil {
		trigger = *task.Trigger
	}
	steps := task.Steps
	if len(steps) == 0 {
		steps = []string{"Review input"}
	}
	exceptionHandling := task.ExceptionHandling
	if exceptionHandling == nil {
		exceptionHandling = []string{}
	}
	notifications := task.Notifications
	if notifications == nil {
		notifications = []string{}
	}
	recipients := task.Recipients
	if recipients == nil {
		recipients = []definition.Recipient{}
	}

	return definition.Task{
		ID:                id,
		Name:              name,
		Role:              role,
		Trigger:           trigger,
		Steps:             steps,
		ExceptionHandling: exceptionHandling,
		Notifications:     notifications,
		Recipients:        recipients,
	}
}
