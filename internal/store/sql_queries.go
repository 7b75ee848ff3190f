package store

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/plannerhub/planner-sync/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildChangesQuery builds the pull pagination SELECT.
//
// With a checkpoint the predicate is the composite
//
//	updated_at > $ts OR (updated_at = $ts AND key > $key)
//
// because multiple documents can share a timestamp at sub-resolution
// granularity; the key tie-break guarantees forward progress and
// exactly-once delivery across repeated pulls.
func buildChangesQuery(spec TableSpec, owner string, after *models.Checkpoint, limit int) (string, []any, error) {
	qb := psql.
		Select(spec.selectColumns()...).
		From(spec.Table).
		Where(sq.Eq{"owner_id": owner})

	if after != nil {
		qb = qb.Where(sq.Or{
			sq.Gt{"updated_at": after.ServerTimestamp},
			sq.And{
				sq.Eq{"updated_at": after.ServerTimestamp},
				sq.Gt{spec.KeyColumn: after.Key},
			},
		})
	}

	query, args, err := qb.
		OrderBy("updated_at ASC", spec.KeyColumn+" ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildLoadQuery builds the stored-state lookup used by the push conflict
// scan: all of an owner's rows whose keys appear in the batch, tombstones
// included.
func buildLoadQuery(spec TableSpec, owner string, keys []string) (string, []any, error) {
	query, args, err := psql.
		Select(spec.selectColumns()...).
		From(spec.Table).
		Where(sq.Eq{"owner_id": owner, spec.KeyColumn: keys}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildUpsertQuery builds the INSERT … ON CONFLICT upsert for one accepted
// push row. Creation and update share this path; there is no separate
// insert-only branch, so a delete for a never-created key produces a
// tombstone row.
//
// The upsert is guarded by the write's ExpectedTimestamp: an update only
// matches while the stored row still carries the timestamp the conflict
// check observed, and a write expecting no row falls back to DO NOTHING when
// one appeared in the meantime. Either way a concurrent commit shows up as
// zero affected rows instead of being overwritten.
func buildUpsertQuery(spec TableSpec, owner string, w models.DocumentWrite, now time.Time) (string, []any, error) {
	cols := spec.insertColumns()

	vals, err := spec.writeValues(owner, w, now)
	if err != nil {
		return "", nil, err
	}

	qb := psql.
		Insert(spec.Table).
		Columns(cols...).
		Values(vals...)

	if w.ExpectedTimestamp == nil {
		qb = qb.Suffix(fmt.Sprintf("ON CONFLICT (owner_id, %s) DO NOTHING", spec.KeyColumn))
	} else {
		// owner_id and the key identify the row; everything else follows EXCLUDED.
		set := make([]string, 0, len(cols)-2)
		for _, col := range cols[2:] {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}

		qb = qb.Suffix(fmt.Sprintf(
			"ON CONFLICT (owner_id, %s) DO UPDATE SET %s WHERE %s.updated_at = ?",
			spec.KeyColumn,
			strings.Join(set, ", "),
			spec.Table,
		), *w.ExpectedTimestamp)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
