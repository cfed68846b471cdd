package post

import (
	"context"
	"log/slog"

	"github.com/ayazaki/hakoba/internal/core/tag"
	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/sec"
	"github.com/ayazaki/hakoba/internal/platform/validate"
)

const (
	maxDescriptionLen = 5000
	maxSourceLen      = 500
	maxTagsPerPost    = 30
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateInput is the service-level payload for uploading a post. File
// metadata arrives pre-extracted by the upload handler.
type CreateInput struct {
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Rating      string   `json:"rating"`
	Tags        []string `json:"tags"`
	Filename    string   `json:"filename"`
	Path        string   `json:"path"`
	Ext         string   `json:"ext"`
	Size        int32    `json:"size"`
	Width       int32    `json:"width"`
	Height      int32    `json:"height"`
}

// EditInput is a partial edit: nil fields keep their current value. A
// supplied tag list replaces the post's entire tag set. Version must echo
// the version the client read; a stale value is rejected with CONFLICT.
type EditInput struct {
	Description *string  `json:"description"`
	Source      *string  `json:"source"`
	Rating      *string  `json:"rating"`
	Tags        []string `json:"tags"`
	Version     int32    `json:"version"`
}

// Create validates and stores a new post. The tag list is normalized into
// the canonical vector before storage, so two uploads differing only in tag
// order or letter case produce identical tag sets.
func (service *Service) Create(ctx context.Context, poster int64, input CreateInput) (*Post, error) {
	rating := DefaultRating
	if input.Rating != "" {
		parsed, ok := ParseRating(input.Rating)
		if !ok {
			return nil, validate.RequiredError("rating", "Must be one of: safe, sketchy, explicit")
		}
		rating = parsed
	}

	ext, extOK := ParseImageExtension(input.Ext)

	v := validate.New()
	v.MaxLen("description", input.Description, maxDescriptionLen)
	v.MaxLen("source", input.Source, maxSourceLen)
	v.Custom("tags", len(input.Tags) == 0, "At least one tag is required")
	v.Custom("tags", len(input.Tags) > maxTagsPerPost, "Too many tags")
	for _, name := range input.Tags {
		v.TagName("tags", name)
	}
	v.Required("filename", input.Filename)
	v.Required("path", input.Path)
	v.Custom("ext", !extOK, "Unsupported image extension")
	v.Positive("size", int(input.Size))
	v.Positive("width", int(input.Width))
	v.Positive("height", int(input.Height))
	if err := v.Err(); err != nil {
		return nil, err
	}

	vector := tag.BuildVector(input.Tags)
	if len(vector) == 0 {
		return nil, validate.RequiredError("tags", "At least one tag is required")
	}

	created, err := service.repo.Insert(ctx, NewPost{
		Poster:      poster,
		Description: input.Description,
		Source:      input.Source,
		Rating:      rating,
		Tags:        vector,
		File: FileDescriptor{
			Filename: input.Filename,
			Path:     input.Path,
			Ext:      ext,
			Size:     input.Size,
			Width:    input.Width,
			Height:   input.Height,
		},
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "post_created",
		slog.Int64("post_id", created.ID),
		slog.Int64("poster", poster),
		slog.Int("tag_count", len(created.Tags)),
	)
	return created, nil
}

// Get fetches a post the requester is allowed to see. Posts outside the
// visibility predicate are reported as NOT_FOUND rather than FORBIDDEN, so
// their existence is not leaked.
func (service *Service) Get(ctx context.Context, id int64, visibility Visibility) (*Post, error) {
	p, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.Allows(p.Rating, p.IsDeleted) {
		return nil, apperr.NotFound("Post")
	}
	return p, nil
}

// View fetches a visible post and records the view. The counter bump is a
// single atomic increment, so concurrent viewers never lose counts.
func (service *Service) View(ctx context.Context, id int64, visibility Visibility) (*Post, error) {
	p, err := service.Get(ctx, id, visibility)
	if err != nil {
		return nil, err
	}
	if err := service.repo.AddView(ctx, id); err != nil {
		return nil, err
	}
	p.Views++
	return p, nil
}

// Random returns one random post within the requester's visibility.
func (service *Service) Random(ctx context.Context, visibility Visibility) (*Post, error) {
	return service.repo.Random(ctx, visibility)
}

// Edit replaces a post's metadata and tag set.
//
// The actor must be the poster or a moderator. The service computes the tag
// delta against the version it read; the repository re-checks that version
// under lock before applying, so the delta can never be applied to a post
// that changed in between.
func (service *Service) Edit(ctx context.Context, actor *sec.AuthClaims, id int64, input EditInput) (*Post, error) {
	v := validate.New()
	if input.Description != nil {
		v.MaxLen("description", *input.Description, maxDescriptionLen)
	}
	if input.Source != nil {
		v.MaxLen("source", *input.Source, maxSourceLen)
	}
	rating := Rating("")
	if input.Rating != nil {
		parsed, ok := ParseRating(*input.Rating)
		v.Custom("rating", !ok, "Must be one of: safe, sketchy, explicit")
		rating = parsed
	}
	if input.Tags != nil {
		v.Custom("tags", len(input.Tags) == 0, "At least one tag is required")
		v.Custom("tags", len(input.Tags) > maxTagsPerPost, "Too many tags")
		for _, name := range input.Tags {
			v.TagName("tags", name)
		}
	}
	v.Positive("version", int(input.Version))
	if err := v.Err(); err != nil {
		return nil, err
	}

	current, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrModerator(actor, current); err != nil {
		return nil, err
	}
	if current.IsDeleted {
		return nil, apperr.Conflict("Cannot edit a deleted post")
	}
	if current.Version != input.Version {
		return nil, apperr.Conflict("Post was modified concurrently, re-fetch and retry")
	}

	// Omitted fields keep their current value; the store always writes the
	// full effective state.
	changes := Changes{
		Description: current.Description,
		Source:      current.Source,
		Rating:      current.Rating,
		Tags:        current.Tags,
	}
	if input.Description != nil {
		changes.Description = *input.Description
	}
	if input.Source != nil {
		changes.Source = *input.Source
	}
	if input.Rating != nil {
		changes.Rating = rating
	}
	if input.Tags != nil {
		vector := tag.BuildVector(input.Tags)
		if len(vector) == 0 {
			return nil, validate.RequiredError("tags", "At least one tag is required")
		}
		changes.Tags = vector
	}
	changes.AddedTags, changes.RemovedTags = tag.Diff(current.Tags, changes.Tags)

	updated, err := service.repo.Update(ctx, id, input.Version, changes)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "post_edited",
		slog.Int64("post_id", id),
		slog.Int64("actor", actor.UserID),
		slog.Int("tags_added", len(changes.AddedTags)),
		slog.Int("tags_removed", len(changes.RemovedTags)),
	)
	return updated, nil
}

// SoftDelete hides a post and releases its tag references. The record stays
// intact for undeletion; deleting an already-deleted post is a CONFLICT.
func (service *Service) SoftDelete(ctx context.Context, actor *sec.AuthClaims, id int64) (*Post, error) {
	current, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrModerator(actor, current); err != nil {
		return nil, err
	}

	deleted, err := service.repo.SetDeleted(ctx, id, true)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "post_deleted",
		slog.Int64("post_id", id),
		slog.Int64("actor", actor.UserID),
	)
	return deleted, nil
}

// Undelete restores a soft-deleted post and reclaims its tag references.
// Moderation-only.
func (service *Service) Undelete(ctx context.Context, actor *sec.AuthClaims, id int64) (*Post, error) {
	if !actor.Perms.AtLeast(sec.PermsModerator) {
		return nil, apperr.Forbidden("Moderator permissions required")
	}

	restored, err := service.repo.SetDeleted(ctx, id, false)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "post_undeleted",
		slog.Int64("post_id", id),
		slog.Int64("actor", actor.UserID),
	)
	return restored, nil
}

// Vote adjusts a post's score by exactly +1 or -1.
func (service *Service) Vote(ctx context.Context, actor *sec.AuthClaims, id int64, delta int32) (*Post, error) {
	if delta != 1 && delta != -1 {
		return nil, validate.RequiredError("vote", "Must be 1 or -1")
	}

	current, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted {
		return nil, apperr.Conflict("Cannot vote on a deleted post")
	}

	if err := service.repo.AddScore(ctx, id, delta); err != nil {
		return nil, err
	}
	current.Score += delta
	return current, nil
}

// requireOwnerOrModerator allows the poster themselves and anyone at
// moderator tier or above.
func requireOwnerOrModerator(actor *sec.AuthClaims, p *Post) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if actor.UserID == p.Poster || actor.Perms.AtLeast(sec.PermsModerator) {
		return nil
	}
	return apperr.Forbidden("You do not have permission to modify this post")
}
