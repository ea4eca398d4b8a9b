package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarFields(t *testing.T) {
	columns := []string{"zn_code", "zn_name", "zn_type", "zn_area", "co_code", "pt_code"}

	tests := []struct {
		name       string
		field      string
		candidates []string
		limit      int
		expected   []string
	}{
		{"typo", "co_cod", []string{"zn_name", "co_code", "og_address"}, MaxFieldSuggestions, []string{"co_code"}},
		{"case insensitive", "PT_CODE", columns, 1, []string{"pt_code"}},
		{"closest first then candidate order", "zn_nme", columns, 2, []string{"zn_name", "zn_code"}},
		{"nothing close", "population_year", columns, MaxFieldSuggestions, []string{}},
		{"no candidates", "zn_code", nil, MaxFieldSuggestions, nil},
		{"zero limit", "zn_code", columns, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimilarFields(tt.field, tt.candidates, tt.limit))
		})
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"zn_code", "zn_code", 0},
		{"zn_code", "zn_cod", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, editDistance(tt.a, tt.b))
		})
	}
}
