package tag

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// # Tag Vector Construction
//
// A post's tag vector is its normalized, deduplicated, sorted tag list. The
// storage layer derives the indexed tsvector from this exact list, so the
// functions here are the single source of the normalization rules: every
// write path and every query path must agree on them.
//
// All functions are pure. Given the same input set they always yield the
// same vector, which is what makes re-indexing idempotent and lets tests
// compare vectors structurally.

// Normalize canonicalizes a single tag name: Unicode NFKC normalization,
// lower-casing, and whitespace trimming. "Cat", "cat" and " cat " all
// normalize to "cat".
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(name)))
}

// BuildVector derives the vector for a tag list: each entry normalized,
// empties discarded, duplicates collapsed, result sorted.
//
// The sort makes the representation order-independent — {"beach","sunset"}
// and {"sunset","beach"} build the same vector.
func BuildVector(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	vector := make([]string, 0, len(names))

	for _, name := range names {
		normalized := Normalize(name)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		vector = append(vector, normalized)
	}

	sort.Strings(vector)
	return vector
}

// Diff computes the symmetric difference between two vectors, returning the
// entries only in next (added) and only in prev (removed). Both inputs must
// already be vectors (normalized and deduplicated).
func Diff(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, name := range prev {
		prevSet[name] = struct{}{}
	}

	nextSet := make(map[string]struct{}, len(next))
	for _, name := range next {
		nextSet[name] = struct{}{}
		if _, ok := prevSet[name]; !ok {
			added = append(added, name)
		}
	}

	for _, name := range prev {
		if _, ok := nextSet[name]; !ok {
			removed = append(removed, name)
		}
	}

	return added, removed
}
