package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/felipediel/watcher/internal/storage"
)

const utf8BOM = "\ufeff"

// CSVRepository reads records from a header-first CSV document
type CSVRepository[T any] struct {
	base[T]
}

// NewCSV creates a repository over the document at locator.
// Fails with ErrConfiguration when locator is empty or opener is nil.
func NewCSV[T any](opener storage.Opener, locator string, build RowBuilder[T], key KeyFunc[T]) (*CSVRepository[T], error) {
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("%w: no file path provided", ErrConfiguration)
	}
	if opener == nil {
		return nil, fmt.Errorf("%w: no opener for %s", ErrConfiguration, locator)
	}
	if build == nil || key == nil {
		return nil, fmt.Errorf("%w: row builder and key func are required", ErrConfiguration)
	}

	src := &csvSource{opener: opener, locator: locator}
	return &CSVRepository[T]{base: base[T]{src: src, build: build, key: key}}, nil
}

type csvSource struct {
	opener  storage.Opener
	locator string
}

func (s *csvSource) name() string {
	return s.locator
}

func (s *csvSource) rows(ctx context.Context) iter.Seq2[sourceRow, error] {
	return func(yield func(sourceRow, error) bool) {
		rc, err := s.opener.Open(ctx, s.locator)
		if err != nil {
			yield(sourceRow{}, fmt.Errorf("failed to open %s: %w", s.locator, err))
			return
		}
		defer rc.Close()

		reader := csv.NewReader(bufio.NewReader(rc))
		reader.ReuseRecord = true

		header, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			yield(sourceRow{}, s.parseError(err))
			return
		}
		columns := make([]string, len(header))
		for i, h := range header {
			if i == 0 {
				h = strings.TrimPrefix(h, utf8BOM)
			}
			columns[i] = strings.TrimSpace(h)
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(sourceRow{}, err)
				return
			}

			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(sourceRow{}, s.parseError(err))
				return
			}

			line, _ := reader.FieldPos(0)
			row := make(Row, len(columns))
			for i, col := range columns {
				row[col] = record[i]
			}
			if !yield(sourceRow{line: line, row: row}, nil) {
				return
			}
		}
	}
}

func (s *csvSource) parseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Source: s.locator, Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Source: s.locator, Err: err}
}
