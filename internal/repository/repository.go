// Package repository loads typed records from tabular sources.
//
// Every call re-reads its source: there is no caching between calls, and a
// malformed row aborts the whole scan.
package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/felipediel/watcher/internal/spec"
)

var (
	// ErrConfiguration is returned when a repository is built without a source
	ErrConfiguration = errors.New("repository misconfigured")
	// ErrNotFound is returned by GetByID when no record has the requested id
	ErrNotFound = errors.New("record not found")
)

// ParseError describes a row that violates the expected schema
type ParseError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("failed to parse ")
	b.WriteString(e.Source)
	if e.Line > 0 {
		b.WriteString(" line ")
		b.WriteString(strconv.Itoa(e.Line))
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(strconv.Quote(e.Column))
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Repository is the read-only view over one record kind
type Repository[T any] interface {
	// Iter lazily yields records satisfying s (all records when s is nil).
	// Each call reopens the source.
	Iter(ctx context.Context, s spec.Specification[T]) iter.Seq2[T, error]
	// All materializes Iter in source order
	All(ctx context.Context, s spec.Specification[T]) ([]T, error)
	// Dict materializes Iter keyed by primary key; later duplicates win
	Dict(ctx context.Context, s spec.Specification[T]) (map[int64]T, error)
	// GetByID returns the first record with the given primary key
	GetByID(ctx context.Context, id int64) (T, error)
}

// Row is one source row: column name to raw text
type Row map[string]string

// String returns the raw value of column
func (r Row) String(column string) (string, error) {
	v, ok := r[column]
	if !ok {
		return "", &ParseError{Column: column, Err: errors.New("missing column")}
	}
	return v, nil
}

// Int parses column as a base-10 integer
func (r Row) Int(column string) (int64, error) {
	v, err := r.String(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, &ParseError{Column: column, Err: fmt.Errorf("invalid integer %q", v)}
	}
	return n, nil
}

// RowBuilder converts a row into a record
type RowBuilder[T any] func(row Row) (T, error)

// KeyFunc returns the primary key of a record
type KeyFunc[T any] func(item T) int64

// rowSource yields raw rows of one source together with their line numbers
type rowSource interface {
	rows(ctx context.Context) iter.Seq2[sourceRow, error]
	name() string
}

type sourceRow struct {
	line int
	row  Row
}

// base implements Repository on top of a rowSource
type base[T any] struct {
	src   rowSource
	build RowBuilder[T]
	key   KeyFunc[T]
}

func (b *base[T]) Iter(ctx context.Context, s spec.Specification[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for sr, err := range b.src.rows(ctx) {
			if err != nil {
				yield(zero, err)
				return
			}

			item, err := b.build(sr.row)
			if err != nil {
				yield(zero, b.rowError(sr.line, err))
				return
			}

			if s != nil && !s.IsSatisfiedBy(item) {
				continue
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (b *base[T]) All(ctx context.Context, s spec.Specification[T]) ([]T, error) {
	items := []T{}
	for item, err := range b.Iter(ctx, s) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (b *base[T]) Dict(ctx context.Context, s spec.Specification[T]) (map[int64]T, error) {
	items := make(map[int64]T)
	for item, err := range b.Iter(ctx, s) {
		if err != nil {
			return nil, err
		}
		items[b.key(item)] = item
	}
	return items, nil
}

func (b *base[T]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T
	byID := spec.Func[T](func(item T) bool { return b.key(item) == id })
	for item, err := range b.Iter(ctx, byID) {
		if err != nil {
			return zero, err
		}
		return item, nil
	}
	return zero, fmt.Errorf("%w: %s id %d", ErrNotFound, b.src.name(), id)
}

// rowError attaches source and line to builder failures
func (b *base[T]) rowError(line int, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return &ParseError{Source: b.src.name(), Line: line, Column: pe.Column, Err: pe.Err}
	}
	return &ParseError{Source: b.src.name(), Line: line, Err: err}
}
