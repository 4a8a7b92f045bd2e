package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrective_Has(t *testing.T) {
	combined := CorrectiveForceSplit | CorrectiveAvoidNonBusiness

	assert.True(t, combined.Has(CorrectiveForceSplit))
	assert.True(t, combined.Has(CorrectiveAvoidNonBusiness))
	assert.True(t, combined.Has(combined))
	assert.True(t, combined.Has(CorrectiveNone))

	assert.False(t, CorrectiveForceSplit.Has(CorrectiveAvoidNonBusiness))
	assert.False(t, CorrectiveNone.Has(CorrectiveForceSplit))
}

func TestCorrective_String(t *testing.T) {
	tests := []struct {
		corrective Corrective
		want       string
	}{
		{CorrectiveNone, "none"},
		{CorrectiveForceSplit, "force_split"},
		{CorrectiveAvoidNonBusiness, "avoid_non_business"},
		{CorrectiveForceSplit | CorrectiveAvoidNonBusiness, "force_split+avoid_non_business"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.corrective.String())
	}
}

func TestTask_TriggerValue(t *testing.T) {
	assert.Equal(t, "", Task{}.TriggerValue())

	trigger := "承認されたら"
	assert.Equal(t, "承認されたら", Task{Trigger: &trigger}.TriggerValue())

	empty := ""
	assert.Equal(t, "", Task{Trigger: &empty}.TriggerValue())
}

func TestValidationResult_BlockingIssues(t *testing.T) {
	result := ValidationResult{}
	result.addCode("missing name in task_1")
	result.addIssue(Issue{Code: "role_not_inferred", Severity: SeverityWarning})
	result.addIssue(Issue{Code: "compound_text_single_task", Severity: SeverityError})

	assert.Equal(t, []string{"missing name in task_1", "compound_text_single_task"}, result.BlockingIssues())

	warningsOnly := ValidationResult{}
	warningsOnly.addIssue(Issue{Code: "suspicious_global_trigger", Severity: SeverityWarning})
	assert.Empty(t, warningsOnly.BlockingIssues())

	assert.Empty(t, ValidationResult{}.BlockingIssues())
}
