package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
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

var userColumns = strings.Join(schema.User.Columns(), ", ")

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PassHash, &u.Picture, &u.Perms,
		&u.ShowExplicit, &u.CreateDate, &u.ModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (repository *PostgresRepository) Insert(ctx context.Context, u *User) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`,
		schema.User.Table,
		schema.User.Name, schema.User.Email, schema.User.PassHash,
		schema.User.Picture, schema.User.Perms,
		userColumns,
	)

	created, err := scanUser(repository.db.QueryRow(ctx, query,
		u.Name, u.Email, u.PassHash, u.Picture, u.Perms))
	if err != nil {
		return nil, dberr.Wrap(err, "insert_user")
	}
	return created, nil
}

func (repository *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.User.Table, schema.User.ID)

	u, err := scanUser(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_user_by_id")
	}
	return u, nil
}

func (repository *PostgresRepository) GetByName(ctx context.Context, name string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.User.Table, schema.User.Name)

	u, err := scanUser(repository.db.QueryRow(ctx, query, name))
	if err != nil {
		return nil, dberr.Wrap(err, "get_user_by_name")
	}
	return u, nil
}

func (repository *PostgresRepository) UpdateShowExplicit(ctx context.Context, id int64, showExplicit bool) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.User.Table,
		schema.User.ShowExplicit, schema.User.ModifiedDate,
		schema.User.ID,
		userColumns,
	)

	u, err := scanUser(repository.db.QueryRow(ctx, query, id, showExplicit))
	if err != nil {
		return nil, dberr.Wrap(err, "update_user_show_explicit")
	}
	return u, nil
}
