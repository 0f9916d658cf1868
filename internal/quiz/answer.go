package quiz

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Answer is the correct answer of a question: either a single option
// string or a set of option strings. It encodes to JSON as a string or
// an array respectively.
type Answer struct {
	values []string
	multi  bool
}

// Single returns an Answer holding exactly one option.
func Single(option string) Answer {
	return Answer{values: []string{option}}
}

// Set returns an Answer holding a set of options. Duplicates are removed,
// first occurrence wins.
func Set(options ...string) Answer {
	var vals []string
	for _, o := range options {
		if !slices.Contains(vals, o) {
			vals = append(vals, o)
		}
	}
	return Answer{values: vals, multi: true}
}

// IsSet reports whether the answer is a set rather than a single string.
func (a Answer) IsSet() bool { return a.multi }

// Values returns the correct option strings.
func (a Answer) Values() []string { return slices.Clone(a.values) }

// String returns the single answer, or the set joined with ", ".
func (a Answer) String() string {
	if !a.multi && len(a.values) == 1 {
		return a.values[0]
	}
	return strings.Join(a.values, ", ")
}

// Matches reports whether submitted is exactly the correct set,
// independent of order.
func (a Answer) Matches(submitted []string) bool {
	if len(a.values) == 0 {
		return false
	}
	seen := make(map[string]bool, len(submitted))
	for _, s := range submitted {
		seen[s] = true
	}
	if len(seen) != len(a.values) {
		return false
	}
	for _, v := range a.values {
		if !seen[v] {
			return false
		}
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.multi && len(a.values) == 1 {
		return json.Marshal(a.values[0])
	}
	vals := a.values
	if vals == nil {
		vals = []string{}
	}
	return json.Marshal(vals)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Single(single)
		return nil
	}
	var set []string
	if err := json.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("correct answer must be a string or an array of strings: %w", err)
	}
	*a = Set(set...)
	return nil
}
