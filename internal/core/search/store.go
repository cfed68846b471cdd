package search

import (
	"context"

	"github.com/ayazaki/hakoba/internal/core/post"
)

// Sort selects the result ordering. Every ordering has a deterministic id
// tiebreak so pagination never duplicates or skips rows.
type Sort string

const (
	SortDateDesc  Sort = "date_desc"
	SortDateAsc   Sort = "date_asc"
	SortScoreDesc Sort = "score_desc"
	SortScoreAsc  Sort = "score_asc"
)

// DefaultSort is newest-first, the browsing default.
const DefaultSort = SortDateDesc

// ParseSort validates a raw sort value, defaulting when empty.
func ParseSort(raw string) (Sort, bool) {
	if raw == "" {
		return DefaultSort, true
	}
	switch Sort(raw) {
	case SortDateDesc, SortDateAsc, SortScoreDesc, SortScoreAsc:
		return Sort(raw), true
	}
	return "", false
}

// Repository defines the index-backed search operation.
type Repository interface {
	// Search returns the page of posts matching the query within the
	// visibility predicate, plus the total match count.
	Search(ctx context.Context, q Query, visibility post.Visibility, sort Sort, limit, offset int) ([]*post.Post, int, error)
}
