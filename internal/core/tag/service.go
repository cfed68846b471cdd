package tag

import (
	"context"
	"log/slog"
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

// GetByName looks up a single tag; the name is normalized first so the
// lookup agrees with how the catalog stores names.
func (service *Service) GetByName(ctx context.Context, name string) (*Tag, error) {
	return service.repo.GetByName(ctx, Normalize(name))
}

// List returns tags ordered by live reference count, most used first.
func (service *Service) List(ctx context.Context, limit, offset int) ([]*Tag, int, error) {
	return service.repo.List(ctx, limit, offset)
}
