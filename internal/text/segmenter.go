package text

import (
	"strings"
	"unicode"
)

// SplitterVersion identifies the segmentation rule set. Surfaced in
// conversion metadata as splitter_version.
const SplitterVersion = "ja_v1"

// separators break input into fragments. Punctuation first, then
// conjunctions.
var separators = []string{"。", "、", "そして", "または", "および", "及び"}

// Split breaks free-form Japanese text into normalized action
// fragments. Whitespace is collapsed, fragments of two or fewer
// non-space runes are dropped, a trailing continuative し becomes する,
// and duplicates keep their first occurrence. Separator-free phrases
// pass through unchanged.
func Split(input string) []string {
	normalized := strings.ReplaceAll(input, "　", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")

	fragments := []string{normalized}
	for _, sep := range separators {
		next := make([]string, 0, len(fragments))
		for _, fragment := range fragments {
			for _, part := range strings.Split(fragment, sep) {
				part = strings.TrimSpace(part)
				if part != "" {
					next = append(next, part)
				}
			}
		}
		fragments = next
	}

	results := make([]string, 0, len(fragments))
	seen := make(map[string]struct{}, len(fragments))
	for _, fragment := range fragments {
		if nonSpaceRuneCount(fragment) <= 2 {
			continue
		}
		fragment = normalizeVerbEnding(fragment)
		if _, ok := seen[fragment]; ok {
			continue
		}
		seen[fragment] = struct{}{}
		results = append(results, fragment)
	}
	return results
}

// normalizeVerbEnding rewrites a trailing continuative し to the
// dictionary form する so fragments read as complete actions.
func normalizeVerbEnding(fragment string) string {
	runes := []rune(fragment)
	if len(runes) > 2 && runes[len(runes)-1] == 'し' {
		return string(runes[:len(runes)-1]) + "する"
	}
	return fragment
}

// ExtractTrigger returns the condition clause of phrase: the prefix
// through the leftmost trigger marker. Ties between markers resolve by
// position, not marker order. After 後 or 次第 an immediately following
// に is included. No marker present returns "".
func ExtractTrigger(phrase string) string {
	bestIdx := -1
	bestMarker := ""
	for _, marker := range triggerMarkers {
		idx := strings.Index(phrase, marker)
		if idx < 0 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			bestMarker = marker
		}
	}
	if bestIdx == -1 {
		return ""
	}

	end := bestIdx + len(bestMarker)
	if bestMarker == "後" || bestMarker == "次第" {
		if strings.HasPrefix(phrase[end:], "に") {
			end += len("に")
		}
	}
	return phrase[:end]
}

func nonSpaceRuneCount(s string) int {
	count := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	return count
}
