package text

import "regexp"

// Person is a person entity detected in input text.
type Person struct {
	Name    string `json:"name"`
	Surface string `json:"surface"`
	Type    string `json:"type"`
}

// Entities groups the entity slots reported in conversion metadata.
// Orgs, amounts and dates are reserved slots; the current rule set only
// detects people.
type Entities struct {
	People  []Person `json:"people"`
	Orgs    []string `json:"orgs"`
	Amounts []string `json:"amounts"`
	Dates   []string `json:"dates"`
}

// personPattern matches a kanji/kana run of up to ten runes followed by
// the さん honorific.
var personPattern = regexp.MustCompile(`([一-龠々〆ヵヶぁ-んァ-ン]{1,10})さん`)

// ExtractPeople detects person entities, deduped by name in order of
// first appearance.
func ExtractPeople(input string) []Person {
	matches := personPattern.FindAllStringSubmatch(input, -1)
	people := make([]Person, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		people = append(people, Person{
			Name:    name,
			Surface: name + "さん",
			Type:    "person",
		})
	}
	return people
}

// Extract runs all entity detectors over input.
func Extract(input string) Entities {
	return Entities{
		People:  ExtractPeople(input),
		Orgs:    []string{},
		Amounts: []string{},
		Dates:   []string{},
	}
}
