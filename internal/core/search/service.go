package search

import (
	"context"
	"log/slog"

	"github.com/ayazaki/hakoba/internal/core/post"
	"github.com/ayazaki/hakoba/internal/platform/validate"
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

// Search parses the raw query and runs it within the requester's visibility.
// Queries naming tags the catalog has never seen simply match nothing; an
// unknown tag is not an error.
func (service *Service) Search(ctx context.Context, rawQuery, rawSort string, visibility post.Visibility, limit, offset int) ([]*post.Post, int, error) {
	q, err := Parse(rawQuery)
	if err != nil {
		return nil, 0, err
	}

	sort, ok := ParseSort(rawSort)
	if !ok {
		return nil, 0, validate.RequiredError("sort", "Must be one of: date_desc, date_asc, score_desc, score_asc")
	}

	return service.repo.Search(ctx, q, visibility, sort, limit, offset)
}
