package tag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayazaki/hakoba/internal/core/tag"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase_passthrough", "sunset", "sunset"},
		{"uppercase_folds", "Sunset", "sunset"},
		{"mixed_case", "SuNsEt", "sunset"},
		{"leading_trailing_space", "  sunset  ", "sunset"},
		{"fullwidth_compatibility", "ｃａｔ", "cat"},
		{"empty", "", ""},
		{"space_only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tag.Normalize(tt.input))
		})
	}
}

func TestBuildVector(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			"sorted_output",
			[]string{"sunset", "beach"},
			[]string{"beach", "sunset"},
		},
		{
			"order_independent",
			[]string{"beach", "sunset"},
			[]string{"beach", "sunset"},
		},
		{
			"case_duplicates_collapse",
			[]string{"Cat", "cat", " CAT "},
			[]string{"cat"},
		},
		{
			"empties_dropped",
			[]string{"", "  ", "dog"},
			[]string{"dog"},
		},
		{
			"nil_input",
			nil,
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tag.BuildVector(tt.input))
		})
	}
}

func TestBuildVector_Deterministic(t *testing.T) {
	input := []string{"Zebra", "apple", "MANGO", "apple", " zebra"}

	first := tag.BuildVector(input)
	second := tag.BuildVector(input)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"apple", "mango", "zebra"}, first)
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name        string
		prev        []string
		next        []string
		wantAdded   []string
		wantRemoved []string
	}{
		{
			"disjoint",
			[]string{"a", "b"},
			[]string{"c"},
			[]string{"c"},
			[]string{"a", "b"},
		},
		{
			"overlap",
			[]string{"beach", "sunset"},
			[]string{"dusk", "sunset"},
			[]string{"dusk"},
			[]string{"beach"},
		},
		{
			"identical",
			[]string{"a"},
			[]string{"a"},
			nil,
			nil,
		},
		{
			"from_empty",
			nil,
			[]string{"a"},
			[]string{"a"},
			nil,
		},
		{
			"to_empty",
			[]string{"a"},
			nil,
			nil,
			[]string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := tag.Diff(tt.prev, tt.next)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}
