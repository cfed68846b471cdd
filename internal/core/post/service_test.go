package post_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayazaki/hakoba/internal/core/access"
	"github.com/ayazaki/hakoba/internal/core/post"
	"github.com/ayazaki/hakoba/internal/core/search"
	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/sec"
)

// fakeRepository is an in-memory Repository that mirrors the storage
// contract: version checks, delete-state conflicts, and tag reference counts
// that move atomically with every post mutation.
type fakeRepository struct {
	posts  map[int64]*post.Post
	counts map[string]int
	nextID int64

	// afterGet, when set, runs after every GetByID. Tests use it to interleave
	// a concurrent mutation between a service's read and its follow-up write.
	afterGet func()
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		posts:  make(map[int64]*post.Post),
		counts: make(map[string]int),
		nextID: 1,
	}
}

func (f *fakeRepository) Insert(_ context.Context, input post.NewPost) (*post.Post, error) {
	p := &post.Post{
		ID:             f.nextID,
		Poster:         input.Poster,
		Description:    input.Description,
		Source:         input.Source,
		Rating:         input.Rating,
		Tags:           append([]string(nil), input.Tags...),
		Version:        1,
		FileDescriptor: input.File,
	}
	f.nextID++
	f.posts[p.ID] = p
	for _, name := range input.Tags {
		f.counts[name]++
	}
	return copyPost(p), nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (*post.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	snapshot := copyPost(p)
	if f.afterGet != nil {
		f.afterGet()
	}
	return snapshot, nil
}

func (f *fakeRepository) Random(_ context.Context, visibility post.Visibility) (*post.Post, error) {
	for _, p := range f.posts {
		if visibility.Allows(p.Rating, p.IsDeleted) {
			return copyPost(p), nil
		}
	}
	return nil, apperr.NotFound("Post")
}

func (f *fakeRepository) Update(_ context.Context, id int64, expectedVersion int32, changes post.Changes) (*post.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	if p.IsDeleted {
		return nil, apperr.Conflict("Cannot edit a deleted post")
	}
	if p.Version != expectedVersion {
		return nil, apperr.Conflict("Post was modified concurrently, re-fetch and retry")
	}
	if err := f.adjustCounts(changes.AddedTags, 1); err != nil {
		return nil, err
	}
	if err := f.adjustCounts(changes.RemovedTags, -1); err != nil {
		return nil, err
	}
	p.Description = changes.Description
	p.Source = changes.Source
	p.Rating = changes.Rating
	p.Tags = append([]string(nil), changes.Tags...)
	p.Version++
	return copyPost(p), nil
}

func (f *fakeRepository) SetDeleted(_ context.Context, id int64, deleted bool) (*post.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	if p.IsDeleted == deleted {
		return nil, apperr.Conflict("Post delete state unchanged")
	}
	direction := 1
	if deleted {
		direction = -1
	}
	if err := f.adjustCounts(p.Tags, direction); err != nil {
		return nil, err
	}
	p.IsDeleted = deleted
	p.Version++
	return copyPost(p), nil
}

func (f *fakeRepository) AddScore(_ context.Context, id int64, delta int32) error {
	p, ok := f.posts[id]
	if !ok {
		return apperr.NotFound("Post")
	}
	if p.IsDeleted {
		return apperr.Conflict("Cannot vote on a deleted post")
	}
	p.Score += delta
	return nil
}

func (f *fakeRepository) AddView(_ context.Context, id int64) error {
	p, ok := f.posts[id]
	if !ok {
		return apperr.NotFound("Post")
	}
	p.Views++
	return nil
}

func (f *fakeRepository) adjustCounts(names []string, direction int) error {
	for _, name := range names {
		next := f.counts[name] + direction
		if next < 0 {
			return apperr.Invariant("tag count driven below zero: "+name, nil)
		}
		f.counts[name] = next
	}
	return nil
}

func copyPost(p *post.Post) *post.Post {
	clone := *p
	clone.Tags = append([]string(nil), p.Tags...)
	return &clone
}

func newService(repo post.Repository) *post.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return post.NewService(repo, logger)
}

func validCreateInput(tags ...string) post.CreateInput {
	return post.CreateInput{
		Description: "a quiet evening",
		Rating:      "safe",
		Tags:        tags,
		Filename:    "a1b2c3.jpg",
		Path:        "/srv/images/a1b2c3.jpg",
		Ext:         "jpg",
		Size:        1024,
		Width:       800,
		Height:      600,
	}
}

func claims(userID int64, perms sec.Perms) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: userID, Username: "tester", Perms: perms}
}

var (
	guestVis = post.Visibility{MaxRating: post.RatingSketchy}
	modVis   = post.Visibility{MaxRating: post.RatingExplicit, IncludeDeleted: true}
)

func ptr(s string) *string { return &s }

func TestService_Create_NormalizesTags(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	created, err := service.Create(context.Background(), 1, validCreateInput("Sunset", " BEACH ", "sunset"))
	require.NoError(t, err)

	assert.Equal(t, []string{"beach", "sunset"}, created.Tags)
	assert.Equal(t, int32(1), created.Version)
	assert.Equal(t, 1, repo.counts["beach"])
	assert.Equal(t, 1, repo.counts["sunset"])
}

func TestService_Create_DefaultsRatingToSketchy(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	input := validCreateInput("beach")
	input.Rating = ""

	created, err := service.Create(context.Background(), 1, input)
	require.NoError(t, err)
	assert.Equal(t, post.RatingSketchy, created.Rating)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*post.CreateInput)
	}{
		{"no_tags", func(in *post.CreateInput) { in.Tags = nil }},
		{"forbidden_tag_chars", func(in *post.CreateInput) { in.Tags = []string{"rating:safe"} }},
		{"whitespace_in_tag", func(in *post.CreateInput) { in.Tags = []string{"two words"} }},
		{"unknown_rating", func(in *post.CreateInput) { in.Rating = "nsfw" }},
		{"unknown_extension", func(in *post.CreateInput) { in.Ext = "jpeg" }},
		{"zero_size", func(in *post.CreateInput) { in.Size = 0 }},
		{"missing_filename", func(in *post.CreateInput) { in.Filename = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			service := newService(repo)

			input := validCreateInput("beach")
			tt.mutate(&input)

			_, err := service.Create(context.Background(), 1, input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			assert.Empty(t, repo.counts)
		})
	}
}

func TestService_Edit_CountsFollowTagChanges(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach", "sunset"))
	require.NoError(t, err)

	updated, err := service.Edit(context.Background(), owner, created.ID, post.EditInput{
		Description: ptr("dusk instead"),
		Tags:        []string{"sunset", "dusk"},
		Version:     created.Version,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dusk", "sunset"}, updated.Tags)
	assert.Equal(t, int32(2), updated.Version)
	assert.Equal(t, 0, repo.counts["beach"])
	assert.Equal(t, 1, repo.counts["sunset"])
	assert.Equal(t, 1, repo.counts["dusk"])
}

func TestService_Edit_OmittedFieldsUnchanged(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach", "sunset"))
	require.NoError(t, err)

	updated, err := service.Edit(context.Background(), owner, created.ID, post.EditInput{
		Rating:  ptr("explicit"),
		Version: created.Version,
	})
	require.NoError(t, err)

	assert.Equal(t, post.RatingExplicit, updated.Rating)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, 1, repo.counts["beach"])
	assert.Equal(t, 1, repo.counts["sunset"])
}

func TestService_Edit_StaleVersionLosesRace(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
	require.NoError(t, err)

	// Both editors read version 1. The first to write wins.
	first, err := service.Edit(context.Background(), owner, created.ID, post.EditInput{
		Tags:    []string{"beach", "sunset"},
		Version: created.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), first.Version)

	_, err = service.Edit(context.Background(), owner, created.ID, post.EditInput{
		Tags:    []string{"beach", "dusk"},
		Version: created.Version,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// The losing edit must not have touched the counts.
	assert.Equal(t, 1, repo.counts["beach"])
	assert.Equal(t, 1, repo.counts["sunset"])
	assert.Equal(t, 0, repo.counts["dusk"])

	// The loser retries against refreshed state and both additions land,
	// each counted exactly once.
	fresh, err := service.Get(context.Background(), created.ID, guestVis)
	require.NoError(t, err)
	final, err := service.Edit(context.Background(), owner, created.ID, post.EditInput{
		Tags:    append(fresh.Tags, "dusk"),
		Version: fresh.Version,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"beach", "dusk", "sunset"}, final.Tags)
	assert.Equal(t, 1, repo.counts["beach"])
	assert.Equal(t, 1, repo.counts["sunset"])
	assert.Equal(t, 1, repo.counts["dusk"])
}

func TestService_Edit_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		actor   *sec.AuthClaims
		wantErr string
	}{
		{"owner_allowed", claims(1, sec.PermsUser), ""},
		{"moderator_allowed", claims(99, sec.PermsModerator), ""},
		{"admin_allowed", claims(99, sec.PermsAdmin), ""},
		{"other_user_forbidden", claims(2, sec.PermsUser), "FORBIDDEN"},
		{"anonymous_unauthorized", nil, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			service := newService(repo)

			created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
			require.NoError(t, err)

			_, err = service.Edit(context.Background(), tt.actor, created.ID, post.EditInput{
				Rating:  ptr("sketchy"),
				Version: created.Version,
			})
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apperr.As(err).Code)
			}
		})
	}
}

func TestService_SoftDelete_ReleasesCountsAndHidesPost(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach", "sunset"))
	require.NoError(t, err)

	deleted, err := service.SoftDelete(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	// Deleted posts release their tag references but keep their content.
	assert.Equal(t, 0, repo.counts["beach"])
	assert.Equal(t, 0, repo.counts["sunset"])
	assert.Equal(t, created.Tags, deleted.Tags)

	_, err = service.Get(context.Background(), created.ID, guestVis)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Moderators opted into deleted posts still see it.
	visible, err := service.Get(context.Background(), created.ID, modVis)
	require.NoError(t, err)
	assert.True(t, visible.IsDeleted)
}

func TestService_SoftDelete_Twice_Conflicts(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
	require.NoError(t, err)

	_, err = service.SoftDelete(context.Background(), owner, created.ID)
	require.NoError(t, err)

	_, err = service.SoftDelete(context.Background(), owner, created.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))

	// The failed second delete must not double-release the counts.
	assert.Equal(t, 0, repo.counts["beach"])
}

func TestService_Undelete_RestoresCounts(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)
	moderator := claims(50, sec.PermsModerator)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach", "sunset"))
	require.NoError(t, err)

	_, err = service.SoftDelete(context.Background(), owner, created.ID)
	require.NoError(t, err)

	restored, err := service.Undelete(context.Background(), moderator, created.ID)
	require.NoError(t, err)

	assert.False(t, restored.IsDeleted)
	assert.Equal(t, created.Tags, restored.Tags)
	assert.Equal(t, created.Description, restored.Description)
	assert.Equal(t, 1, repo.counts["beach"])
	assert.Equal(t, 1, repo.counts["sunset"])
}

func TestService_Undelete_RequiresModerator(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
	require.NoError(t, err)
	_, err = service.SoftDelete(context.Background(), owner, created.ID)
	require.NoError(t, err)

	// Even the poster cannot undelete their own post.
	_, err = service.Undelete(context.Background(), owner, created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestService_Vote(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	voter := claims(7, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
	require.NoError(t, err)

	up, err := service.Vote(context.Background(), voter, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), up.Score)

	down, err := service.Vote(context.Background(), voter, created.ID, -1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), down.Score)

	_, err = service.Vote(context.Background(), voter, created.ID, 5)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestService_Vote_DeletedPost_Conflicts(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	owner := claims(1, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
	require.NoError(t, err)
	_, err = service.SoftDelete(context.Background(), owner, created.ID)
	require.NoError(t, err)

	_, err = service.Vote(context.Background(), owner, created.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

// Walks a post lifecycle through creation, a guest tag search, and soft
// deletion, checking the tag counts and search results at every step.
// A soft-delete landing between the voter's read and the score write must
// reject the vote: the tombstone check is part of the score update itself.
func TestService_Vote_DeleteRace_Conflicts(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	voter := claims(7, sec.PermsUser)

	created, err := service.Create(context.Background(), 1, validCreateInput("beach"))
	require.NoError(t, err)

	repo.afterGet = func() {
		repo.afterGet = nil
		repo.posts[created.ID].IsDeleted = true
	}

	_, err = service.Vote(context.Background(), voter, created.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, int32(0), repo.posts[created.ID].Score)
}

func TestScenario_TagSearchLifecycle(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	first, err := service.Create(context.Background(), 1, validCreateInput("sunset", "beach"))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.counts["sunset"])

	explicitInput := validCreateInput("sunset")
	explicitInput.Rating = "explicit"
	_, err = service.Create(context.Background(), 1, explicitInput)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.counts["sunset"])

	query, err := search.Parse("sunset")
	require.NoError(t, err)
	guest := access.For(sec.PermsGuest, false, false)

	guestMatches := func() []int64 {
		ids := make([]int64, 0)
		for id, p := range repo.posts {
			if query.Match(p.Tags) && guest.Allows(p.Rating, p.IsDeleted) {
				ids = append(ids, id)
			}
		}
		return ids
	}

	// The explicit post matches the query but is invisible to guests.
	assert.Equal(t, []int64{first.ID}, guestMatches())

	_, err = service.SoftDelete(context.Background(), claims(1, sec.PermsUser), first.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.counts["sunset"])
	assert.Equal(t, 0, repo.counts["beach"])
	assert.Empty(t, guestMatches())
}

func TestService_View_CountsAndFilters(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	input := validCreateInput("beach")
	input.Rating = "explicit"
	created, err := service.Create(context.Background(), 1, input)
	require.NoError(t, err)

	// Guests never see explicit posts; existence is not leaked.
	_, err = service.View(context.Background(), created.ID, guestVis)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	assert.Equal(t, int32(0), repo.posts[created.ID].Views)

	viewed, err := service.View(context.Background(), created.ID, modVis)
	require.NoError(t, err)
	assert.Equal(t, int32(1), viewed.Views)
}
