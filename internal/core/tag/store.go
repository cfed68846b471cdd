package tag

import "context"

type Repository interface {
	GetByName(ctx context.Context, name string) (*Tag, error)
	List(ctx context.Context, limit, offset int) ([]*Tag, int, error)
}
