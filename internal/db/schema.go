package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrSchema is returned when a configured table is missing or lacks a column
var ErrSchema = errors.New("schema mismatch")

// Queryer is the subset of *pgxpool.Pool the schema check needs
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const columnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2`

// VerifySchema checks that every table exists and exposes the listed columns.
// Table names may be schema-qualified; unqualified names are looked up in
// the public schema. All mismatches are reported together.
func VerifySchema(ctx context.Context, db Queryer, tables map[string][]string) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		schema, table := splitTable(name)

		have, err := tableColumns(ctx, db, schema, table)
		if err != nil {
			return fmt.Errorf("failed to inspect table %s: %w", name, err)
		}
		if len(have) == 0 {
			problems = append(problems, fmt.Sprintf("table %s not found", name))
			continue
		}
		for _, col := range tables[name] {
			if _, ok := have[col]; !ok {
				problems = append(problems, fmt.Sprintf("table %s has no column %s", name, col))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrSchema, strings.Join(problems, "; "))
	}

	slog.Info("Database schema verified", "tables", len(names))
	return nil
}

func tableColumns(ctx context.Context, db Queryer, schema, table string) (map[string]struct{}, error) {
	rows, err := db.Query(ctx, columnsQuery, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}

func splitTable(name string) (schema, table string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "public", name
}
