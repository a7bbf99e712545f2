package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// querier is the subset of *pgxpool.Pool used to read source tables.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresProvider loads the three source tables from a Postgres database
// holding job_postings_fact, skills_dim and skills_job_dim.
type PostgresProvider struct {
	pool *pgxpool.Pool
	q    querier
}

// OpenPostgres connects to the database described by dsn and verifies the
// connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresProvider, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresProvider{pool: pool, q: pool}, nil
}

// Close releases the connection pool.
func (p *PostgresProvider) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Load reads all three tables concurrently.
func (p *PostgresProvider) Load(ctx context.Context) (*Raw, error) {
	if p == nil || p.q == nil {
		return nil, fmt.Errorf("postgres provider is not connected")
	}

	raw := &Raw{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raw.Jobs, err = queryTable(ctx, p.q, JobsTable)
		return err
	})
	g.Go(func() (err error) {
		raw.Skills, err = queryTable(ctx, p.q, SkillsTable)
		return err
	})
	g.Go(func() (err error) {
		raw.Links, err = queryTable(ctx, p.q, LinksTable)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

func queryTable(ctx context.Context, q querier, name string) (*Table, error) {
	rows, err := q.Query(ctx, "SELECT * FROM "+pgx.Identifier{name}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &Table{Name: name, Columns: make([]string, len(fields))}
	for i, fd := range fields {
		t.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", name, err)
	}

	return t, nil
}

// normalizeValue maps pgx driver values onto the small set of Go types the
// cleaning stage understands: nil, string, int64, float64 and time.Time.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time
	case pgtype.Timestamp:
		if !x.Valid {
			return nil
		}
		return x.Time
	default:
		return v
	}
}
