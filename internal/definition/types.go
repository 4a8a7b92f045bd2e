// Package definition defines the business definition document produced
// by a conversion and its strict schema rules.
package definition

import "fmt"

// BusinessDefinition is the schema-validated output of a conversion.
// Slice fields are never nil so the document marshals with explicit
// empty arrays instead of null.
type BusinessDefinition struct {
	Title         string   `json:"title"`
	Overview      string   `json:"overview"`
	Tasks         []Task   `json:"tasks"`
	Roles         []Role   `json:"roles"`
	Assumptions   []string `json:"assumptions"`
	OpenQuestions []string `json:"open_questions"`
}

// Task is a single unit of work in the process.
type Task struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Role              string      `json:"role"`
	Trigger           string      `json:"trigger"`
	Steps             []string    `json:"steps"`
	ExceptionHandling []string    `json:"exception_handling"`
	Notifications     []string    `json:"notifications"`
	Recipients        []Recipient `json:"recipients"`
}

// Recipient is a notification target. Fields default to empty strings,
// never null.
type Recipient struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Surface string `json:"surface"`
}

// Role names a participant and what they are responsible for.
type Role struct {
	Name             string   `json:"name"`
	Responsibilities []string `json:"responsibilities"`
}

// Validate checks the document against the schema. The generator must
// always produce a valid document; a violation here is a hard error.
func (d *BusinessDefinition) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	if d.Overview == "" {
		return fmt.Errorf("overview is required")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("at least one task is required")
	}
	if len(d.Roles) == 0 {
		return fmt.Errorf("at least one role is required")
	}
	if d.Assumptions == nil {
		return fmt.Errorf("assumptions must not be null")
	}
	if d.OpenQuestions == nil {
		return fmt.Errorf("open_questions must not be null")
	}

	for i, task := range d.Tasks {
		if err := task.validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	for i, role := range d.Roles {
		if role.Name == "" {
			return fmt.Errorf("role %d: name is required", i)
		}
		if len(role.Responsibilities) == 0 {
			return fmt.Errorf("role %d: responsibilities are required", i)
		}
	}
	return nil
}

func (t *Task) validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Role == "" {
		return fmt.Errorf("role is required")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("steps are required")
	}
	if t.ExceptionHandling == nil {
		return fmt.Errorf("exception_handling must not be null")
	}
	if t.Notifications == nil {
		return fmt.Errorf("notifications must not be null")
	}
	if t.Recipients == nil {
		return fmt.Errorf("recipients must not be null")
	}
	return nil
}
