package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScanner_Scan(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Segment
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:  "plain text",
			input: "<aqd:AQD_Zone/>",
			expected: []Segment{
				{Type: SegmentTypeText, Value: "<aqd:AQD_Zone/>", Position: Position{Offset: 0, Line: 1, Column: 1}},
			},
		},
		{
			name:  "single placeholder",
			input: "{code}",
			expected: []Segment{
				{Type: SegmentTypePlaceholder, Value: "code", Position: Position{Offset: 0, Line: 1, Column: 1}},
			},
		},
		{
			name:  "text around namespaced placeholder",
			input: "a{zone.zn_code}c",
			expected: []Segment{
				{Type: SegmentTypeText, Value: "a", Position: Position{Offset: 0, Line: 1, Column: 1}},
				{Type: SegmentTypePlaceholder, Value: "zone.zn_code", Position: Position{Offset: 1, Line: 1, Column: 2}},
				{Type: SegmentTypeText, Value: "c", Position: Position{Offset: 15, Line: 1, Column: 16}},
			},
		},
		{
			name:  "adjacent placeholders",
			input: "{a}{b}",
			expected: []Segment{
				{Type: SegmentTypePlaceholder, Value: "a", Position: Position{Offset: 0, Line: 1, Column: 1}},
				{Type: SegmentTypePlaceholder, Value: "b", Position: Position{Offset: 3, Line: 1, Column: 4}},
			},
		},
		{
			name:  "placeholder on second line",
			input: "x\n {p}",
			expected: []Segment{
				{Type: SegmentTypeText, Value: "x\n ", Position: Position{Offset: 0, Line: 1, Column: 1}},
				{Type: SegmentTypePlaceholder, Value: "p", Position: Position{Offset: 3, Line: 2, Column: 2}},
			},
		},
		{
			name:  "stray closing brace is text",
			input: "a}b",
			expected: []Segment{
				{Type: SegmentTypeText, Value: "a}b", Position: Position{Offset: 0, Line: 1, Column: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := NewScanner(tt.input, zap.NewNop()).Scan()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, segments)
		})
	}
}

func TestScanner_Scan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		message  string
		position Position
	}{
		{
			name:     "unclosed at end of text",
			input:    "abc {zone.code",
			message:  ErrMsgUnclosedPlaceholder,
			position: Position{Offset: 4, Line: 1, Column: 5},
		},
		{
			name:     "nested opening brace",
			input:    "{a{b}}",
			message:  ErrMsgNestedPlaceholder,
			position: Position{Offset: 2, Line: 1, Column: 3},
		},
		{
			name:     "empty placeholder",
			input:    "x{}",
			message:  ErrMsgEmptyPlaceholder,
			position: Position{Offset: 1, Line: 1, Column: 2},
		},
		{
			name:     "lone opening brace",
			input:    "{",
			message:  ErrMsgUnclosedPlaceholder,
			position: Position{Offset: 0, Line: 1, Column: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.input, nil).Scan()
			require.Error(t, err)

			var scanErr *ScanError
			require.ErrorAs(t, err, &scanErr)
			assert.Equal(t, tt.message, scanErr.Message)
			assert.Equal(t, tt.position, scanErr.Position)
			assert.Contains(t, err.Error(), tt.position.String())
		})
	}
}

func TestEffectiveKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no namespace", "co_code", "co_code"},
		{"single namespace", "zone.zn_code", "zn_code"},
		{"multiple dots uses last", "a.b.c", "c"},
		{"trailing dot", "resp.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveKey(tt.in))
		})
	}
}

func TestSegmentType_String(t *testing.T) {
	assert.Equal(t, SegmentTypeNameText, SegmentTypeText.String())
	assert.Equal(t, SegmentTypeNamePlaceholder, SegmentTypePlaceholder.String())
}
