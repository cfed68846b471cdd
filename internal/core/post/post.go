// Package post owns post records and their lifecycle: creation, tag edits,
// soft deletion, and the score/view counters.
//
// Every mutation keeps two derived representations consistent with the
// post's tag list inside a single transaction: the indexed tag vector stored
// with the post, and the per-tag reference counts in the tag catalog.
package post

import "time"

// # Enumerations
//
// Closed sets, matched exhaustively. The string values are the wire and
// storage representation (postgres enum labels).

// Rating is the content maturity rating gating post visibility.
type Rating string

const (
	RatingSafe     Rating = "safe"
	RatingSketchy  Rating = "sketchy"
	RatingExplicit Rating = "explicit"
)

// DefaultRating applies when an uploader does not pick a rating. Defaulting
// to Sketchy errs on the side of hiding content from unauthenticated
// browsing rather than exposing it.
const DefaultRating = RatingSketchy

// ParseRating validates a raw rating value. ok is false for unknown values.
func ParseRating(raw string) (Rating, bool) {
	switch Rating(raw) {
	case RatingSafe, RatingSketchy, RatingExplicit:
		return Rating(raw), true
	}
	return "", false
}

// rank orders ratings from tamest to most mature.
func (r Rating) rank() int {
	switch r {
	case RatingSafe:
		return 0
	case RatingSketchy:
		return 1
	case RatingExplicit:
		return 2
	default:
		return 3
	}
}

// Above reports whether r is more mature than ceiling.
func (r Rating) Above(ceiling Rating) bool {
	return r.rank() > ceiling.rank()
}

// ImageExtension is the file type of a stored image.
type ImageExtension string

const (
	ExtBmp  ImageExtension = "bmp"
	ExtGif  ImageExtension = "gif"
	ExtJpg  ImageExtension = "jpg"
	ExtPng  ImageExtension = "png"
	ExtTiff ImageExtension = "tiff"
	ExtWebp ImageExtension = "webp"
)

// ParseImageExtension validates a raw extension value.
func ParseImageExtension(raw string) (ImageExtension, bool) {
	switch ImageExtension(raw) {
	case ExtBmp, ExtGif, ExtJpg, ExtPng, ExtTiff, ExtWebp:
		return ImageExtension(raw), true
	}
	return "", false
}

// # Domain Entities

// FileDescriptor carries the already-validated file metadata supplied by the
// external upload handler. The core stores it verbatim and never touches
// image bytes.
type FileDescriptor struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Ext      ImageExtension `json:"ext"`
	Size     int32          `json:"size"`
	Width    int32          `json:"width"`
	Height   int32          `json:"height"`
}

// Post is a single content item.
//
// Tags is the source of truth for the post's tag set; the storage layer keeps
// the indexed tag vector derived from it in lockstep. Version increments on
// every content mutation and backs the optimistic concurrency check: an edit
// carrying a stale version is rejected with CONFLICT.
type Post struct {
	ID           int64     `json:"id"`
	Poster       int64     `json:"poster"`
	Description  string    `json:"description"`
	Source       string    `json:"source,omitempty"`
	Rating       Rating    `json:"rating"`
	Tags         []string  `json:"tags"`
	Score        int32     `json:"score"`
	Views        int32     `json:"views"`
	IsDeleted    bool      `json:"is_deleted"`
	Version      int32     `json:"version"`
	CreateDate   time.Time `json:"create_date"`
	ModifiedDate time.Time `json:"modified_date"`

	FileDescriptor
}

// Visibility is the predicate gating which posts a requester may see: a
// rating ceiling plus whether soft-deleted posts are included. It is computed
// once per request by the access gate and passed down immutably.
type Visibility struct {
	MaxRating      Rating
	IncludeDeleted bool
}

// Allows reports whether a post with the given rating and deletion state
// passes the predicate.
func (v Visibility) Allows(rating Rating, isDeleted bool) bool {
	if isDeleted && !v.IncludeDeleted {
		return false
	}
	return !rating.Above(v.MaxRating)
}
