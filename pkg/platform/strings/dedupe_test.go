package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"foo"},
			expected: []string{"foo"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  foo  ", "bar  ", "  baz"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"foo", "bar", "foo", "baz", "bar"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"foo", "", "  ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "combined: trim, dedupe, remove empty",
			input:    []string{"  foo ", "bar", "foo", "", "  ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "preserves case",
			input:    []string{"Foo", "foo", "FOO"},
			expected: []string{"Foo", "foo", "FOO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestOrderLike(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		reference []string
		expected  []string
	}{
		{
			name:      "nil slice",
			input:     nil,
			reference: []string{"a"},
			expected:  []string{},
		},
		{
			name:      "reorders to reference",
			input:     []string{"Predictive Parity", "Statistical Parity"},
			reference: []string{"Statistical Parity", "Marginal Candidates", "Predictive Parity"},
			expected:  []string{"Statistical Parity", "Predictive Parity"},
		},
		{
			name:      "drops unknown values",
			input:     []string{"b", "zzz"},
			reference: []string{"a", "b"},
			expected:  []string{"b"},
		},
		{
			name:      "collapses duplicates",
			input:     []string{"a", "a"},
			reference: []string{"a"},
			expected:  []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := OrderLike(tt.input, tt.reference)
			assert.Equal(t, tt.expected, result)
		})
	}
}
