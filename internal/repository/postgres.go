package repository

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the repository needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads records from a database table. Every column is
// read as text so the same RowBuilder serves CSV and SQL sources.
type PostgresRepository[T any] struct {
	base[T]
	source *pgSource
}

// NewPostgres creates a repository over table, selecting columns in order
func NewPostgres[T any](db Querier, table string, columns []string, build RowBuilder[T], key KeyFunc[T]) (*PostgresRepository[T], error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("%w: no table provided", ErrConfiguration)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: no database for table %s", ErrConfiguration, table)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns for table %s", ErrConfiguration, table)
	}
	if build == nil || key == nil {
		return nil, fmt.Errorf("%w: row builder and key func are required", ErrConfiguration)
	}

	src := &pgSource{db: db, table: table, columns: columns}
	return &PostgresRepository[T]{
		base:   base[T]{src: src, build: build, key: key},
		source: src,
	}, nil
}

// Query returns the SELECT statement the repository runs
func (r *PostgresRepository[T]) Query() string {
	return r.source.query()
}

type pgSource struct {
	db      Querier
	table   string
	columns []string
}

func (s *pgSource) name() string {
	return s.table
}

// query builds the scan statement. Rows come back in primary key order
// since tables carry no insertion order of their own.
func (s *pgSource) query() string {
	cols := make([]string, len(s.columns))
	for i, c := range s.columns {
		cols[i] = pgx.Identifier{c}.Sanitize() + "::text"
	}
	table := pgx.Identifier(strings.Split(s.table, ".")).Sanitize()
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY 1", strings.Join(cols, ", "), table)
}

func (s *pgSource) rows(ctx context.Context) iter.Seq2[sourceRow, error] {
	return func(yield func(sourceRow, error) bool) {
		rows, err := s.db.Query(ctx, s.query())
		if err != nil {
			yield(sourceRow{}, fmt.Errorf("failed to query %s: %w", s.table, err))
			return
		}
		defer rows.Close()

		line := 0
		for rows.Next() {
			line++
			values := make([]*string, len(s.columns))
			dest := make([]any, len(s.columns))
			for i := range values {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				yield(sourceRow{}, &ParseError{Source: s.table, Line: line, Err: err})
				return
			}

			row := make(Row, len(s.columns))
			for i, col := range s.columns {
				// NULL stays absent so builders report a missing value
				if values[i] != nil {
					row[col] = *values[i]
				}
			}
			if !yield(sourceRow{line: line, row: row}, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(sourceRow{}, fmt.Errorf("failed to read %s: %w", s.table, err))
		}
	}
}
