// Package text provides Japanese text heuristics for turning free-form
// business descriptions into candidate action phrases.
//
// The package supports:
//   - Sentence segmentation on Japanese punctuation and conjunctions
//   - Trigger phrase extraction from conditional markers
//   - Business/non-business phrase classification
//   - Person entity detection from さん honorific patterns
//
// # Architecture
//
// The main entry points are:
//   - Split: break input into normalized action fragments
//   - ExtractTrigger: pull the leading condition out of a phrase
//   - Filter: keep only fragments that look like business actions
//   - IsCompound: detect input that describes more than one action
//   - ExtractPeople: detect person entities
//
// All functions are pure and deterministic; every rule set carries a
// version tag (SplitterVersion, FilterVersion) that is surfaced in
// conversion metadata so results can be traced back to the rules that
// produced them.
//
// # Usage
//
//	actions := text.Filter(text.Split(input))
//	for _, a := range actions {
//	    trigger := text.ExtractTrigger(a)
//	    ...
//	}
package text
