package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONObject pulls a JSON object out of an LLM reply, tolerating
// markdown code fences and surrounding prose. Returns the substring
// from the first { through the last }.
func ExtractJSONObject(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}
