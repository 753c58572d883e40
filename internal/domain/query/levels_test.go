package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandLevelNames(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "primary",
			input:    []string{"Primary"},
			expected: []string{"Primary 1", "Primary 2", "Primary 3", "Primary 4", "Primary 5", "Primary 6"},
		},
		{
			name:     "secondary",
			input:    []string{"Secondary"},
			expected: []string{"Secondary 1", "Secondary 2", "Secondary 3", "Secondary 4"},
		},
		{
			name:     "jc aliases collapse",
			input:    []string{"JC", "Junior College"},
			expected: []string{"JC 1", "JC 2"},
		},
		{
			name:     "concrete name passes through",
			input:    []string{"Primary 3"},
			expected: []string{"Primary 3"},
		},
		{
			name:     "unknown name passes through",
			input:    []string{"Kindergarten"},
			expected: []string{"Kindergarten"},
		},
		{
			name:     "overlap is deduplicated",
			input:    []string{"Secondary 2", "Secondary", " Secondary 2 "},
			expected: []string{"Secondary 2", "Secondary 1", "Secondary 3", "Secondary 4"},
		},
		{
			name:     "blanks dropped",
			input:    []string{"", "  ", "JC"},
			expected: []string{"JC 1", "JC 2"},
		},
		{
			name:     "nil",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExpandLevelNames(tc.input))
		})
	}
}

func TestExpandLevelNames_IsCaseSensitive(t *testing.T) {
	assert.Equal(t, []string{"primary"}, ExpandLevelNames([]string{"primary"}))
}

func TestExpandLevelNames_CoversEveryCoarseLabel(t *testing.T) {
	for coarse := range levelGroups {
		expanded := ExpandLevelNames([]string{coarse})
		assert.NotContains(t, expanded, coarse)
		assert.NotEmpty(t, expanded)
	}
}
