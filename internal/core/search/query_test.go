package search_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayazaki/hakoba/internal/core/search"
	"github.com/ayazaki/hakoba/internal/platform/apperr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantRequired []string
		wantExcluded []string
	}{
		{
			"single_term",
			"beach",
			[]string{"beach"}, []string{},
		},
		{
			"conjunction",
			"beach sunset",
			[]string{"beach", "sunset"}, []string{},
		},
		{
			"negation",
			"beach -crowd",
			[]string{"beach"}, []string{"crowd"},
		},
		{
			"negation_only",
			"-crowd",
			[]string{}, []string{"crowd"},
		},
		{
			"case_normalized",
			"Beach SUNSET",
			[]string{"beach", "sunset"}, []string{},
		},
		{
			"duplicates_collapse",
			"beach beach -crowd -crowd",
			[]string{"beach"}, []string{"crowd"},
		},
		{
			"extra_whitespace",
			"  beach \t sunset  ",
			[]string{"beach", "sunset"}, []string{},
		},
		{
			"unicode_term",
			"夕焼け",
			[]string{"夕焼け"}, []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := search.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRequired, q.Required)
			assert.Equal(t, tt.wantExcluded, q.Excluded)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace_only", "   "},
		{"bare_minus", "-"},
		{"tsquery_operator_pipe", "beach|sunset"},
		{"tsquery_operator_and", "beach&sunset"},
		{"tsquery_operator_not", "!beach"},
		{"parentheses", "(beach)"},
		{"colon", "rating:safe"},
		{"single_quote", "o'clock"},
		{"double_quote", `"beach"`},
		{"too_many_terms", strings.Repeat("tag ", search.MaxTerms+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := search.Parse(tt.raw)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		})
	}
}

func TestParse_OrderIndependent(t *testing.T) {
	first, err := search.Parse("sunset beach -crowd")
	require.NoError(t, err)
	second, err := search.Parse("-crowd beach sunset")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestQuery_Match(t *testing.T) {
	q, err := search.Parse("beach sunset -crowd")
	require.NoError(t, err)

	tests := []struct {
		name string
		tags []string
		want bool
	}{
		{"all_required_present", []string{"beach", "dusk", "sunset"}, true},
		{"missing_required", []string{"beach"}, false},
		{"excluded_present", []string{"beach", "crowd", "sunset"}, false},
		{"no_tags", nil, false},
		{"exact_tags_no_substrings", []string{"beaches", "sunsets"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Match(tt.tags))
		})
	}
}

func TestQuery_Match_NegationOnly(t *testing.T) {
	q, err := search.Parse("-crowd")
	require.NoError(t, err)

	assert.True(t, q.Match([]string{"beach"}))
	assert.True(t, q.Match(nil))
	assert.False(t, q.Match([]string{"beach", "crowd"}))
}

func TestQuery_TSQuery(t *testing.T) {
	q, err := search.Parse("sunset beach -crowd")
	require.NoError(t, err)

	assert.Equal(t, "'beach' & 'sunset' & !'crowd'", q.TSQuery())
}

func TestParseSort(t *testing.T) {
	sort, ok := search.ParseSort("")
	assert.True(t, ok)
	assert.Equal(t, search.SortDateDesc, sort)

	for _, valid := range []string{"date_desc", "date_asc", "score_desc", "score_asc"} {
		_, ok := search.ParseSort(valid)
		assert.True(t, ok, valid)
	}

	_, ok = search.ParseSort("relevance")
	assert.False(t, ok)
}
