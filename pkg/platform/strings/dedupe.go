// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// OrderLike keeps the members of values that appear in reference, ordered
// the way reference orders them. Values missing from reference are dropped.
//
// Example:
//
//	OrderLike([]string{"b", "x", "a"}, []string{"a", "b", "c"})
//	// Returns: []string{"a", "b"}
func OrderLike(values, reference []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}

	result := make([]string, 0, len(values))
	for _, r := range reference {
		if _, ok := wanted[r]; ok {
			result = append(result, r)
			delete(wanted, r)
		}
	}

	return result
}
