package tag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/database/schema"
	"github.com/ayazaki/hakoba/internal/platform/dberr"
)

// # Catalog Write Operations
//
// Both operations run on a caller-owned transaction: a post mutation resolves
// its tags, adjusts the counts, and writes the post inside ONE transaction
// boundary, so the catalog can never drift from the posts that reference it.

// ResolveOrCreate maps normalized tag names to their catalog ids, creating
// rows for names the catalog has never seen.
//
// Creation is idempotent under concurrency: the no-op DO UPDATE turns a lost
// insert race into a plain read of the winner's row, so both writers observe
// the same id and RETURNING covers every requested name.
func ResolveOrCreate(ctx context.Context, tx pgx.Tx, names []string) (map[string]int64, error) {
	if len(names) == 0 {
		return map[string]int64{}, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		SELECT unnest($1::text[])
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s
		RETURNING %s, %s
	`,
		schema.Tag.Table, schema.Tag.Name,
		schema.Tag.Name, schema.Tag.Name, schema.Tag.Name,
		schema.Tag.ID, schema.Tag.Name,
	)

	rows, err := tx.Query(ctx, query, names)
	if err != nil {
		return nil, dberr.Wrap(err, "tag_resolve_or_create")
	}
	defer rows.Close()

	resolved := make(map[string]int64, len(names))
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, dberr.Wrap(err, "tag_resolve_scan")
		}
		resolved[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "tag_resolve_rows")
	}

	return resolved, nil
}

// AdjustCounts applies per-tag reference count deltas as a single atomic
// statement, so concurrent adjustments to a hot tag from unrelated posts
// never lose updates to a read-modify-write race.
//
// A delta that would drive a count negative trips the tags_count_nonnegative
// CHECK and aborts the transaction with an INVARIANT_VIOLATION — it is a
// defect upstream, never silently clamped.
func AdjustCounts(ctx context.Context, tx pgx.Tx, delta map[int64]int) error {
	if len(delta) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(delta))
	deltas := make([]int32, 0, len(delta))
	for id, d := range delta {
		if d == 0 {
			continue
		}
		ids = append(ids, id)
		deltas = append(deltas, int32(d))
	}
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s t
		SET %s = t.%s + d.delta
		FROM (SELECT unnest($1::bigint[]) AS id, unnest($2::int[]) AS delta) d
		WHERE t.%s = d.id
	`,
		schema.Tag.Table,
		schema.Tag.Count, schema.Tag.Count,
		schema.Tag.ID,
	)

	result, err := tx.Exec(ctx, query, ids, deltas)
	if err != nil {
		return dberr.Wrap(err, "tag_adjust_counts")
	}

	return checkAdjustedRows(int(result.RowsAffected()), len(ids))
}

// checkAdjustedRows verifies every referenced catalog row took its delta.
// Catalog rows are never physically removed, so a shortfall means a post
// referenced a tag id with no backing row; valid input cannot produce that
// state, and the enclosing transaction must abort rather than commit a
// partial adjustment.
func checkAdjustedRows(updated, expected int) error {
	if updated == expected {
		return nil
	}
	return apperr.Invariant(
		"Tag catalog out of sync with post references",
		fmt.Errorf("tag_adjust_counts: updated %d of %d rows", updated, expected),
	)
}

// CountDeltas folds an id mapping and a signed direction into the delta shape
// [AdjustCounts] consumes.
func CountDeltas(ids map[string]int64, direction int) map[int64]int {
	delta := make(map[int64]int, len(ids))
	for _, id := range ids {
		delta[id] += direction
	}
	return delta
}
