package tag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayazaki/hakoba/internal/platform/database/schema"
	"github.com/ayazaki/hakoba/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) GetByName(ctx context.Context, name string) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.Tag.ID, schema.Tag.Name, schema.Tag.Type, schema.Tag.Count, schema.Tag.CreateDate,
		schema.Tag.Table, schema.Tag.Name)

	t := &Tag{}
	err := repository.db.QueryRow(ctx, query, name).Scan(
		&t.ID, &t.Name, &t.Type, &t.Count, &t.CreateDate,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_name")
	}

	return t, nil
}

func (repository *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Tag, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s DESC, %s ASC
		LIMIT $1 OFFSET $2
	`,
		schema.Tag.ID, schema.Tag.Name, schema.Tag.Type, schema.Tag.Count, schema.Tag.CreateDate,
		schema.Tag.Table,
		schema.Tag.Count, schema.Tag.Name,
	)

	rows, err := repository.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	var totalCount int

	for rows.Next() {
		t := &Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.Count, &t.CreateDate, &totalCount); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_tags_rows")
	}

	return tags, totalCount, nil
}
