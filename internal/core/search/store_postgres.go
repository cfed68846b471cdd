package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayazaki/hakoba/internal/core/post"
	"github.com/ayazaki/hakoba/internal/platform/database/schema"
	"github.com/ayazaki/hakoba/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// orderClause maps a Sort to its ORDER BY. All variants carry the id
// tiebreak matching the composite indexes, so pages are stable under
// concurrent inserts.
func orderClause(sort Sort) string {
	switch sort {
	case SortDateAsc:
		return fmt.Sprintf("%s ASC, %s ASC", schema.Post.CreateDate, schema.Post.ID)
	case SortScoreDesc:
		return fmt.Sprintf("%s DESC, %s DESC", schema.Post.Score, schema.Post.ID)
	case SortScoreAsc:
		return fmt.Sprintf("%s ASC, %s ASC", schema.Post.Score, schema.Post.ID)
	default:
		return fmt.Sprintf("%s DESC, %s DESC", schema.Post.CreateDate, schema.Post.ID)
	}
}

// Search evaluates the boolean query against the GIN-indexed tag vector and
// applies the visibility predicate in the same WHERE clause, so invisible
// posts never influence paging or the total count.
func (repository *PostgresRepository) Search(ctx context.Context, q Query, visibility post.Visibility, sort Sort, limit, offset int) ([]*post.Post, int, error) {
	conditions := []string{
		fmt.Sprintf("%s @@ $1::tsquery", schema.Post.TagVector),
		fmt.Sprintf("%s <= $2::rating", schema.Post.Rating),
	}
	args := []interface{}{q.TSQuery(), visibility.MaxRating}

	if !visibility.IncludeDeleted {
		conditions = append(conditions, fmt.Sprintf("%s = FALSE", schema.Post.IsDeleted))
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`,
		strings.Join(schema.Post.Columns(), ", "),
		schema.Post.Table,
		strings.Join(conditions, " AND "),
		orderClause(sort),
		len(args)-1, len(args),
	)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search_posts")
	}
	defer rows.Close()

	posts := make([]*post.Post, 0)
	var totalCount int

	for rows.Next() {
		p := &post.Post{}
		err := rows.Scan(
			&p.ID, &p.Poster, &p.Description, &p.Source, &p.Rating, &p.Tags,
			&p.Score, &p.Views, &p.IsDeleted, &p.Version,
			&p.Filename, &p.Path, &p.Ext, &p.Size, &p.Width, &p.Height,
			&p.CreateDate, &p.ModifiedDate,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_search_result")
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "search_posts_rows")
	}

	return posts, totalCount, nil
}
