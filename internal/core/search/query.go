// Package search implements boolean tag queries over the indexed tag
// vectors: whitespace-separated terms are ANDed, a leading '-' negates a
// term. Matching is exact on whole normalized tags, never substrings.
package search

import (
	"sort"
	"strings"

	"github.com/ayazaki/hakoba/internal/core/tag"
	"github.com/ayazaki/hakoba/internal/platform/validate"
)

// MaxTerms caps the number of terms in one query. Each extra term widens the
// index scan, so the cap bounds worst-case query cost.
const MaxTerms = 10

// Query is a parsed, normalized boolean tag query. Term order never affects
// results: both slices are sorted and deduplicated.
type Query struct {
	Required []string
	Excluded []string
}

// Parse turns a raw query string into a Query.
//
// Terms are normalized exactly like stored tags, so a query matches
// regardless of letter case or Unicode representation. Terms containing
// reserved operator characters are rejected rather than stripped; silently
// altering a query would return results the user did not ask for.
func Parse(raw string) (Query, error) {
	terms := strings.Fields(raw)
	if len(terms) == 0 {
		return Query{}, validate.RequiredError("q", "Search query must contain at least one tag")
	}
	if len(terms) > MaxTerms {
		return Query{}, validate.RequiredError("q", "Too many search terms")
	}

	v := validate.New()
	required := make(map[string]struct{})
	excluded := make(map[string]struct{})

	for _, term := range terms {
		negated := strings.HasPrefix(term, "-")
		name := tag.Normalize(strings.TrimPrefix(term, "-"))

		v.TagName("q", name)
		if v.HasErrors() {
			continue
		}

		if negated {
			excluded[name] = struct{}{}
		} else {
			required[name] = struct{}{}
		}
	}
	if err := v.Err(); err != nil {
		return Query{}, err
	}

	return Query{
		Required: sortedKeys(required),
		Excluded: sortedKeys(excluded),
	}, nil
}

// Match reports whether a post with the given normalized tag set satisfies
// the query: every required tag present, no excluded tag present.
func (q Query) Match(tags []string) bool {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}

	for _, want := range q.Required {
		if _, ok := set[want]; !ok {
			return false
		}
	}
	for _, reject := range q.Excluded {
		if _, ok := set[reject]; ok {
			return false
		}
	}
	return true
}

// TSQuery renders the query in tsquery syntax, e.g. "'beach' & !'crowd'".
// Lexemes are quoted verbatim; the parser already rejected every character
// that could escape the quoting or act as an operator.
func (q Query) TSQuery() string {
	parts := make([]string, 0, len(q.Required)+len(q.Excluded))
	for _, name := range q.Required {
		parts = append(parts, "'"+name+"'")
	}
	for _, name := range q.Excluded {
		parts = append(parts, "!'"+name+"'")
	}
	return strings.Join(parts, " & ")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
