package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "GPUs"},
		{1, "GPU"},
		{2, "GPUs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.count, "GPU", "GPUs"))
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"json", "jsno", 2},      // transposition (2 edits)
		{"yaml", "yamls", 1},     // insertion
		{"plain", "plan", 1},     // deletion
		{"json", "JSON", 4},      // case matters
		{"kitten", "sitting", 3}, // classic example
		{"°C", "°F", 1},          // runes, not bytes
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"terminal", "plain", "json", "yaml", "prom"}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"typo", "jsno", []string{"json"}},
		{"missing char", "yml", []string{"yaml"}},
		{"case insensitive", "PLAN", []string{"plain"}},
		{"exact", "prom", []string{"prom"}},
		{"no close match", "csv", nil},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestSimilar(tt.input, candidates, 3))
		})
	}
}

func TestSuggestSimilar_ClosestFirstAndLimited(t *testing.T) {
	candidates := []string{"tests", "test", "best"}

	assert.Equal(t, []string{"test", "best", "tests"}, SuggestSimilar("test", candidates, 3))
	assert.Equal(t, []string{"test"}, SuggestSimilar("test", candidates, 1))
	assert.Nil(t, SuggestSimilar("test", nil, 3))
}
