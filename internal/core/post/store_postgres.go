package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayazaki/hakoba/internal/core/tag"
	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/constants"
	"github.com/ayazaki/hakoba/internal/platform/database/schema"
	"github.com/ayazaki/hakoba/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// postColumns is the canonical SELECT list matching scanPost's field order.
var postColumns = strings.Join(schema.Post.Columns(), ", ")

func scanPost(row pgx.Row) (*Post, error) {
	p := &Post{}
	err := row.Scan(
		&p.ID, &p.Poster, &p.Description, &p.Source, &p.Rating, &p.Tags,
		&p.Score, &p.Views, &p.IsDeleted, &p.Version,
		&p.Filename, &p.Path, &p.Ext, &p.Size, &p.Width, &p.Height,
		&p.CreateDate, &p.ModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// inTx runs fn in a transaction, automatically retrying on serialization
// failures and deadlocks with doubling backoff. Version conflicts and
// invariant violations are never retried; they pass straight through.
func (repository *PostgresRepository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	var err error
	delay := constants.TxRetryBaseDelay

	for attempt := 1; attempt <= constants.TxMaxAttempts; attempt++ {
		err = pgx.BeginFunc(ctx, repository.db, fn)
		if err == nil || !dberr.IsRetryable(err) {
			return err
		}

		if attempt == constants.TxMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return dberr.Wrap(err, "tx_retries_exhausted")
}

// Insert creates the post row, the catalog rows for any unseen tags, and the
// count increments for all of them, in one transaction. The stored tag vector
// is derived in-database from the same normalized list the row carries.
func (repository *PostgresRepository) Insert(ctx context.Context, input NewPost) (*Post, error) {
	var created *Post

	err := repository.inTx(ctx, func(tx pgx.Tx) error {
		resolved, err := tag.ResolveOrCreate(ctx, tx, input.Tags)
		if err != nil {
			return err
		}
		if err := tag.AdjustCounts(ctx, tx, tag.CountDeltas(resolved, 1)); err != nil {
			return err
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, array_to_tsvector($5::text[]), $6, $7, $8, $9, $10, $11)
			RETURNING %s
		`,
			schema.Post.Table,
			schema.Post.Poster, schema.Post.Description, schema.Post.Source,
			schema.Post.Rating, schema.Post.Tags, schema.Post.TagVector,
			schema.Post.Filename, schema.Post.Path, schema.Post.Ext,
			schema.Post.Size, schema.Post.Width, schema.Post.Height,
			postColumns,
		)

		row := tx.QueryRow(ctx, query,
			input.Poster, input.Description, input.Source, input.Rating, input.Tags,
			input.File.Filename, input.File.Path, input.File.Ext,
			input.File.Size, input.File.Width, input.File.Height,
		)
		created, err = scanPost(row)
		if err != nil {
			return dberr.Wrap(err, "insert_post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (repository *PostgresRepository) GetByID(ctx context.Context, id int64) (*Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		postColumns, schema.Post.Table, schema.Post.ID)

	p, err := scanPost(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_post_by_id")
	}
	return p, nil
}

// Random picks one post uniformly at random among those passing the
// visibility predicate. Enum comparison follows declaration order, so the
// rating ceiling is a plain <=.
func (repository *PostgresRepository) Random(ctx context.Context, visibility Visibility) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s <= $1::rating AND (%s = FALSE OR $2)
		ORDER BY random()
		LIMIT 1
	`,
		postColumns, schema.Post.Table,
		schema.Post.Rating, schema.Post.IsDeleted,
	)

	p, err := scanPost(repository.db.QueryRow(ctx, query, visibility.MaxRating, visibility.IncludeDeleted))
	if err != nil {
		return nil, dberr.Wrap(err, "get_random_post")
	}
	return p, nil
}

// Update applies a full-replacement edit under a row lock.
//
// The version is re-checked after the lock is acquired: the service computed
// the tag delta against the version it read, so applying the delta is only
// valid while that version still holds. A mismatch means another writer won
// the race and the caller must re-read.
func (repository *PostgresRepository) Update(ctx context.Context, id int64, expectedVersion int32, changes Changes) (*Post, error) {
	var updated *Post

	err := repository.inTx(ctx, func(tx pgx.Tx) error {
		lockQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.Post.Version, schema.Post.IsDeleted, schema.Post.Table, schema.Post.ID)

		var currentVersion int32
		var isDeleted bool
		if err := tx.QueryRow(ctx, lockQuery, id).Scan(&currentVersion, &isDeleted); err != nil {
			return dberr.Wrap(err, "lock_post_for_update")
		}
		if isDeleted {
			return apperr.Conflict("Cannot edit a deleted post")
		}
		if currentVersion != expectedVersion {
			return apperr.Conflict("Post was modified concurrently, re-fetch and retry")
		}

		addedIDs, err := tag.ResolveOrCreate(ctx, tx, changes.AddedTags)
		if err != nil {
			return err
		}
		removedIDs, err := tag.ResolveOrCreate(ctx, tx, changes.RemovedTags)
		if err != nil {
			return err
		}
		if err := tag.AdjustCounts(ctx, tx, tag.CountDeltas(addedIDs, 1)); err != nil {
			return err
		}
		if err := tag.AdjustCounts(ctx, tx, tag.CountDeltas(removedIDs, -1)); err != nil {
			return err
		}

		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET %s = $2, %s = $3, %s = $4, %s = $5, %s = array_to_tsvector($5::text[]),
			    %s = %s + 1, %s = now()
			WHERE %s = $1
			RETURNING %s
		`,
			schema.Post.Table,
			schema.Post.Description, schema.Post.Source, schema.Post.Rating,
			schema.Post.Tags, schema.Post.TagVector,
			schema.Post.Version, schema.Post.Version, schema.Post.ModifiedDate,
			schema.Post.ID,
			postColumns,
		)

		row := tx.QueryRow(ctx, updateQuery, id,
			changes.Description, changes.Source, changes.Rating, changes.Tags)
		updated, err = scanPost(row)
		if err != nil {
			return dberr.Wrap(err, "update_post")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SetDeleted flips the soft-delete flag and settles tag counts in the same
// transaction: a deleted post's tags no longer count as references, an
// undeleted post's tags count again.
func (repository *PostgresRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*Post, error) {
	var flipped *Post

	err := repository.inTx(ctx, func(tx pgx.Tx) error {
		lockQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.Post.Tags, schema.Post.IsDeleted, schema.Post.Table, schema.Post.ID)

		var tags []string
		var isDeleted bool
		if err := tx.QueryRow(ctx, lockQuery, id).Scan(&tags, &isDeleted); err != nil {
			return dberr.Wrap(err, "lock_post_for_delete")
		}
		if isDeleted == deleted {
			if deleted {
				return apperr.Conflict("Post is already deleted")
			}
			return apperr.Conflict("Post is not deleted")
		}

		direction := 1
		if deleted {
			direction = -1
		}
		resolved, err := tag.ResolveOrCreate(ctx, tx, tags)
		if err != nil {
			return err
		}
		if err := tag.AdjustCounts(ctx, tx, tag.CountDeltas(resolved, direction)); err != nil {
			return err
		}

		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET %s = $2, %s = %s + 1, %s = now()
			WHERE %s = $1
			RETURNING %s
		`,
			schema.Post.Table,
			schema.Post.IsDeleted,
			schema.Post.Version, schema.Post.Version, schema.Post.ModifiedDate,
			schema.Post.ID,
			postColumns,
		)

		flipped, err = scanPost(tx.QueryRow(ctx, updateQuery, id, deleted))
		if err != nil {
			return dberr.Wrap(err, "set_post_deleted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return flipped, nil
}

// AddScore adjusts the score as a single atomic increment. No row lock is
// needed: concurrent votes compose because the delta is applied in-place.
// Only live rows take votes; the tombstone check rides in the same statement
// so a concurrent soft-delete cannot slip a vote onto a deleted post.
func (repository *PostgresRepository) AddScore(ctx context.Context, id int64, delta int32) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $2, %s = now() WHERE %s = $1 AND %s = FALSE`,
		schema.Post.Table,
		schema.Post.Score, schema.Post.Score, schema.Post.ModifiedDate,
		schema.Post.ID, schema.Post.IsDeleted,
	)

	result, err := repository.db.Exec(ctx, query, id, delta)
	if err != nil {
		return dberr.Wrap(err, "add_post_score")
	}
	if result.RowsAffected() == 0 {
		existsQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
			schema.Post.IsDeleted, schema.Post.Table, schema.Post.ID)

		var isDeleted bool
		if err := repository.db.QueryRow(ctx, existsQuery, id).Scan(&isDeleted); err != nil {
			return dberr.Wrap(err, "add_post_score_check")
		}
		return apperr.Conflict("Cannot vote on a deleted post")
	}
	return nil
}

// AddView bumps the view counter. Views are a read-side statistic, so the
// modified date is left alone.
func (repository *PostgresRepository) AddView(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		schema.Post.Table,
		schema.Post.Views, schema.Post.Views,
		schema.Post.ID,
	)

	result, err := repository.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "add_post_view")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
