package pipeline

import (
	"fmt"
	"strings"
)

// Prompt versions recorded in usage metadata. Bump when a wording
// change is likely to shift model behavior.
const (
	readerPromptVersion    = "reader_actions_v1"
	plannerPromptVersion   = "planner_roles_v1"
	generatorPromptVersion = "title_overview_v1"
)

func readerPrompt(input string, actions, conditions []string) string {
	return fmt.Sprintf(`あなたは業務文章からアクションと条件節を抽出するアシスタントです。
以下の文章を読み、アクションと条件節を抽出してください。
出力は必ず JSON のみとし、余計な説明は付けないでください。
抽出語句は input_text に含まれる表現のみ使用してください。
出力形式: {"actions": ["..."], "conditions": ["..."]}
input_text:
%s
参考 actions:
%s
参考 conditions:
%s
`, input, phraseList(actions), phraseList(conditions))
}

func plannerPrompt(input string, actions []string) string {
	return fmt.Sprintf(`あなたは業務文章からタスク分割とロール推定を補助するアシスタントです。
以下の文章を読み、タスクに相当するアクションとロール候補を返してください。
出力は必ず JSON のみとし、余計な説明は付けないでください。
抽出語句は input_text に含まれる表現のみ使用してください。
role は Applicant / Approver / Accounting / Operator のいずれか。
出力形式: {"actions": ["..."], "role_hints": [{"action": "...", "role": "..."}]}
input_text:
%s
参考 actions:
%s
`, input, phraseList(actions))
}

func generatorPrompt(input string) string {
	return fmt.Sprintf(`あなたは業務文章のタイトルと概要を作成するアシスタントです。
次の業務文章を読み、タイトルと概要を短く作成してください。
JSONのみで返してください。
出力形式: {"title": "...", "overview": "..."}
制約:
- title は 20文字以内を目安
- overview は 60文字以内を目安
- 余計な前後文や箇条書きは出力しない
業務文章:
%s
`, input)
}

func phraseList(phrases []string) string {
	if len(phrases) == 0 {
		return "なし"
	}
	return strings.Join(phrases, ", ")
}
