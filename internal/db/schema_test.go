package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type columnRows struct {
	names []string
	pos   int
}

func (r *columnRows) Close()                                       {}
func (r *columnRows) Err() error                                   { return nil }
func (r *columnRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *columnRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *columnRows) RawValues() [][]byte                          { return nil }
func (r *columnRows) Conn() *pgx.Conn                              { return nil }
func (r *columnRows) Values() ([]any, error)                       { return nil, errors.New("not supported") }

func (r *columnRows) Next() bool {
	if r.pos >= len(r.names) {
		return false
	}
	r.pos++
	return true
}

func (r *columnRows) Scan(dest ...any) error {
	p, ok := dest[0].(*string)
	if !ok {
		return fmt.Errorf("unsupported destination %T", dest[0])
	}
	*p = r.names[r.pos-1]
	return nil
}

// catalog maps "schema.table" to its columns
type catalog map[string][]string

func (c catalog) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	key := fmt.Sprintf("%s.%s", args[0], args[1])
	return &columnRows{names: c[key]}, nil
}

type failingQueryer struct{}

func (failingQueryer) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("connection refused")
}

func TestVerifySchema(t *testing.T) {
	db := catalog{
		"public.legislators": {"id", "name"},
		"raw.bills":          {"id", "title", "sponsor_id", "extra"},
	}

	err := VerifySchema(context.Background(), db, map[string][]string{
		"legislators": {"id", "name"},
		"raw.bills":   {"id", "title", "sponsor_id"},
	})
	if err != nil {
		t.Fatalf("VerifySchema() error: %v", err)
	}
}

func TestVerifySchemaMismatch(t *testing.T) {
	db := catalog{"public.legislators": {"id"}}

	err := VerifySchema(context.Background(), db, map[string][]string{
		"legislators": {"id", "name"},
		"votes":       {"id", "bill_id"},
	})
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("error = %v, want ErrSchema", err)
	}
	for _, want := range []string{"legislators has no column name", "table votes not found"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestVerifySchemaQueryError(t *testing.T) {
	err := VerifySchema(context.Background(), failingQueryer{}, map[string][]string{"votes": {"id"}})
	if err == nil || errors.Is(err, ErrSchema) {
		t.Errorf("error = %v, want query failure", err)
	}
}

func TestSplitTable(t *testing.T) {
	tests := map[string][2]string{
		"votes":     {"public", "votes"},
		"raw.votes": {"raw", "votes"},
	}
	for in, want := range tests {
		schema, table := splitTable(in)
		if schema != want[0] || table != want[1] {
			t.Errorf("splitTable(%q) = %q, %q; want %q, %q", in, schema, table, want[0], want[1])
		}
	}
}

func TestNewPostgresLive(t *testing.T) {
	url := os.Getenv("WATCHER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("WATCHER_TEST_DATABASE_URL not set")
	}

	pg, err := NewPostgres(context.Background(), url, Options{MaxConns: 2})
	if err != nil {
		t.Fatalf("NewPostgres() error: %v", err)
	}
	defer pg.Close()

	if err := pg.Health(context.Background()); err != nil {
		t.Errorf("Health() error: %v", err)
	}
}
