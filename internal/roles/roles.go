// Package roles infers responsible roles for business actions using
// keyword tables.
package roles

import (
	"strings"

	"github.com/KazuakiWatanabe/agentic-bizflow/internal/definition"
	"github.com/KazuakiWatanabe/agentic-bizflow/internal/text"
)

// Role names assigned by the inferencer.
const (
	Applicant  = "Applicant"
	Approver   = "Approver"
	Accounting = "Accounting"
	Operator   = "Operator"
)

// contactKeywords mark an action as a notification of some kind.
var contactKeywords = []string{"連絡", "通知", "共有", "送付", "伝えて", "知らせて"}

// roleTable binds a role to the keywords that select it.
type roleTable struct {
	role     string
	keywords []string
}

// defaultRoleTables are checked in priority order: an action about
// approval outranks accounting, which outranks plain application.
func defaultRoleTables() []roleTable {
	return []roleTable{
		{Approver, []string{"承認", "決裁", "レビュー", "差戻し"}},
		{Accounting, []string{"精算", "支払", "請求", "立替", "経費処理", "入金", "仕訳"}},
		{Applicant, []string{"申請", "申込み", "提出", "起票", "入力", "登録"}},
	}
}

// Inference pairs a role with the keywords that selected it.
type Inference struct {
	Role     string
	Keywords []string
}

// Expansion is one concrete task action assigned to one role.
type Expansion struct {
	Role     string
	Action   string
	Keywords []string
}

// Inferencer maps actions to roles using keyword tables.
type Inferencer struct {
	tables []roleTable
}

// NewInferencer creates an inferencer with the default keyword tables.
func NewInferencer() *Inferencer {
	return &Inferencer{tables: defaultRoleTables()}
}

// Infer returns every role whose keywords appear in action, in table
// priority order. An action with no role keywords falls back to
// Applicant, carrying any contact keywords as the match.
func (inf *Inferencer) Infer(action string) []Inference {
	inferences := []Inference{}
	for _, table := range inf.tables {
		var matched []string
		for _, kw := range table.keywords {
			if strings.Contains(action, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			inferences = append(inferences, Inference{Role: table.role, Keywords: matched})
		}
	}
	if len(inferences) > 0 {
		return inferences
	}

	if matched := matchedContactKeywords(action); len(matched) > 0 {
		return []Inference{{Role: Applicant, Keywords: matched}}
	}
	return []Inference{{Role: Applicant, Keywords: []string{}}}
}

// Expand turns each inference into a task action. An Approver match
// becomes its first keyword plus する so the approval step reads as its
// own action; every other role keeps the original action.
func (inf *Inferencer) Expand(action string, inferences []Inference) []Expansion {
	expansions := make([]Expansion, 0, len(inferences))
	for _, inference := range inferences {
		taskAction := action
		if inference.Role == Approver && len(inference.Keywords) > 0 {
			taskAction = inference.Keywords[0] + "する"
		}
		expansions = append(expansions, Expansion{
			Role:     inference.Role,
			Action:   taskAction,
			Keywords: inference.Keywords,
		})
	}
	return expansions
}

// Recipients resolves notification targets for an action. Only
// Applicant actions containing a contact keyword notify anyone, and
// only people actually named in the action are included.
func (inf *Inferencer) Recipients(action, role string, people []text.Person) []definition.Recipient {
	recipients := []definition.Recipient{}
	if role != Applicant || !ContainsContactKeyword(action) {
		return recipients
	}
	for _, person := range people {
		if strings.Contains(action, person.Surface) || strings.Contains(action, person.Name) {
			recipients = append(recipients, definition.Recipient{
				Type:    "person",
				Name:    person.Name,
				Surface: person.Surface,
			})
		}
	}
	return recipients
}

// Responsibilities returns the canonical responsibilities for a role.
func Responsibilities(role string) []string {
	switch role {
	case Applicant:
		return []string{"Submit requests", "Communicate results"}
	case Approver:
		return []string{"Approve or reject requests"}
	case Accounting:
		return []string{"Process reimbursements and accounting entries"}
	default:
		return []string{"Handle requests"}
	}
}

// ContainsContactKeyword reports whether s contains any contact keyword.
func ContainsContactKeyword(s string) bool {
	return len(matchedContactKeywords(s)) > 0
}

func matchedContactKeywords(s string) []string {
	var matched []string
	for _, kw := range contactKeywords {
		if strings.Contains(s, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
