package text

import "strings"

// FilterVersion identifies the classification rule set. Surfaced in
// conversion metadata as action_filter_version.
const FilterVersion = "biz_v1"

// minActionRunes is the length floor for keyword-less fragments.
const minActionRunes = 8

// Filter keeps the phrases that look like business actions, deduped in
// order. A phrase with a business keyword always passes; one with a
// non-business keyword is dropped; anything else passes on length.
func Filter(phrases []string) []string {
	results := make([]string, 0, len(phrases))
	seen := make(map[string]struct{}, len(phrases))
	for _, phrase := range phrases {
		if !isBusinessAction(phrase) {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		results = append(results, phrase)
	}
	return results
}

func isBusinessAction(phrase string) bool {
	if ContainsBusinessKeyword(phrase) {
		return true
	}
	if ContainsNonBusinessKeyword(phrase) {
		return false
	}
	return nonSpaceRuneCount(phrase) >= minActionRunes
}

// IsCompound reports whether input likely describes more than one
// action: several detected actions, clause punctuation, or a compound
// marker anywhere in the text.
func IsCompound(input string, actions []string) bool {
	if len(actions) >= 2 {
		return true
	}
	if strings.ContainsAny(input, "、。") {
		return true
	}
	return containsAnyOf(input, compoundMarkers)
}
