// Package tag owns the canonical tag catalog: the registry of tag names to
// ids with live reference counts, and the normalization rules that turn a
// post's raw tag list into its indexed search vector.
package tag

import "time"

// Tag represents a named label applied to posts.
//
// Count is derived state: it tracks the number of non-deleted posts whose
// vector contains the tag, and is only ever adjusted through [AdjustCounts]
// inside the same transaction that mutates the referencing post.
type Tag struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Type       int16     `json:"type"`
	Count      int       `json:"count"`
	CreateDate time.Time `json:"-"`
}

// Tag type codes. The set is open-ended; the core treats the value as an
// opaque categorization hint for clients.
const (
	TypeGeneral   int16 = 0
	TypeArtist    int16 = 1
	TypeCharacter int16 = 2
)
