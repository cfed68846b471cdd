package post

import "context"

// NewPost is the storage input for creating a post. Tags is the normalized
// vector produced by the service; the repository derives the indexed tag
// vector and the catalog count increments from it inside one transaction.
type NewPost struct {
	Poster      int64
	Description string
	Source      string
	Rating      Rating
	Tags        []string
	File        FileDescriptor
}

// Changes is the storage input for a full-replacement edit. Tags is the new
// normalized vector; AddedTags and RemovedTags are the catalog count deltas
// the service computed against the version it read. The repository only
// applies them after re-validating that version under lock.
type Changes struct {
	Description string
	Source      string
	Rating      Rating
	Tags        []string
	AddedTags   []string
	RemovedTags []string
}

// Repository defines persistence operations for posts.
type Repository interface {
	// Insert creates a post together with its tag catalog entries and count
	// increments, atomically.
	Insert(ctx context.Context, input NewPost) (*Post, error)

	// GetByID fetches a post by id regardless of rating or deletion state.
	// Callers apply the visibility predicate.
	GetByID(ctx context.Context, id int64) (*Post, error)

	// Random fetches one uniformly random post passing the predicate.
	Random(ctx context.Context, visibility Visibility) (*Post, error)

	// Update applies a full-replacement edit if the post's version still
	// equals expectedVersion, bumping the version. A stale version yields
	// CONFLICT; the tag counts and vector move atomically with the row.
	Update(ctx context.Context, id int64, expectedVersion int32, changes Changes) (*Post, error)

	// SetDeleted flips the soft-delete flag and settles the post's tag counts
	// (release on delete, reclaim on undelete). Flipping to the current state
	// yields CONFLICT.
	SetDeleted(ctx context.Context, id int64, deleted bool) (*Post, error)

	// AddScore adjusts the vote score by delta.
	AddScore(ctx context.Context, id int64, delta int32) error

	// AddView increments the view counter.
	AddView(ctx context.Context, id int64) error
}
