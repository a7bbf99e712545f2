package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Row is one record of a relation keyed by column name. Values are the
// SQLite storage types: int64, float64, string or nil.
type Row map[string]any

// Filters is an exact-match conjunction over relation columns. Absent keys
// are unconstrained; a nil value matches NULL.
type Filters map[string]any

// Run records one materialization of one relation.
type Run struct {
	ID        string
	Relation  string
	Rows      int
	CreatedAt time.Time
}

// Put replaces relation with rows under a fresh run id. See PutRun.
func (s *Store) Put(ctx context.Context, relation string, rows [][]any) (*Run, error) {
	return s.PutRun(ctx, uuid.NewString(), relation, rows)
}

// PutRun atomically replaces the contents of relation with rows. Each row
// holds one value per column in schema order. The previous table, if any,
// stays visible to other connections until the transaction commits.
func (s *Store) PutRun(ctx context.Context, runID, relation string, rows [][]any) (*Run, error) {
	rel, ok := Lookup(relation)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, relation)
	}
	for i, row := range rows {
		if len(row) != len(rel.Columns) {
			return nil, fmt.Errorf("row %d of %s has %d values, want %d", i, relation, len(row), len(rel.Columns))
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	staging := relation + "__staging"
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+staging); err != nil {
		return nil, fmt.Errorf("failed to drop stale staging table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(staging, rel)); err != nil {
		return nil, fmt.Errorf("failed to create staging table for %s: %w", relation, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(staging, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert for %s: %w", relation, err)
	}
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			return nil, fmt.Errorf("failed to insert into %s: %w", relation, err)
		}
	}
	stmt.Close()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+relation); err != nil {
		return nil, fmt.Errorf("failed to drop %s: %w", relation, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", staging, relation)); err != nil {
		return nil, fmt.Errorf("failed to swap in %s: %w", relation, err)
	}
	for _, col := range rel.Indexes {
		idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", relation, col, relation, col)
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return nil, fmt.Errorf("failed to index %s(%s): %w", relation, col, err)
		}
	}

	run := &Run{ID: runID, Relation: relation, Rows: len(rows), CreatedAt: time.Now().UTC()}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO materializations (run_id, relation, row_count, created_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Relation, run.Rows, run.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("failed to record run for %s: %w", relation, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit %s: %v", ErrStoreUnavailable, relation, err)
	}
	return run, nil
}

// Get returns the rows of relation matching filters, in insertion order.
// A relation that exists but matches nothing yields an empty slice.
func (s *Store) Get(ctx context.Context, relation string, filters Filters) ([]Row, error) {
	rel, ok := Lookup(relation)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, relation)
	}
	for col := range filters {
		if !rel.HasColumn(col) {
			return nil, fmt.Errorf("relation %s has no column %q", relation, col)
		}
	}

	cols := rel.ColumnNames()
	builder := sq.Select(cols...).From(relation).OrderBy("rowid")
	if len(filters) > 0 {
		builder = builder.Where(sq.Eq(filters))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query for %s: %w", relation, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, fmt.Errorf("%w: %s", ErrRelationNotFound, relation)
		}
		return nil, fmt.Errorf("failed to query %s: %w", relation, err)
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", relation, err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", relation, err)
	}
	return result, nil
}

// Drop removes relation so the next read has to rebuild it. Dropping an
// absent relation is a no-op.
func (s *Store) Drop(ctx context.Context, relation string) error {
	if _, ok := Lookup(relation); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRelation, relation)
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+relation); err != nil {
		return fmt.Errorf("failed to drop %s: %w", relation, err)
	}
	return nil
}

// LatestRuns returns the most recent run for every relation that has ever
// been materialized, ordered by relation name.
func (s *Store) LatestRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, relation, row_count, created_at
		FROM materializations
		WHERE id IN (SELECT MAX(id) FROM materializations GROUP BY relation)
		ORDER BY relation
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Relation, &r.Rows, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run time %q: %w", created, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func isNoSuchTable(err error) bool {
	return err != nil && !errors.Is(err, sql.ErrNoRows) && strings.Contains(err.Error(), "no such table")
}
