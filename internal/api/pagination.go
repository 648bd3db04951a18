package api

import (
	"errors"
	"fmt"
	"strconv"
)

var errInvalidPage = errors.New("invalid page")

// Page is one slice of a list response
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalCount int  `json:"totalCount"`
	NextPage   *int `json:"nextPage"`
}

// paginate cuts page number raw (1-based, default 1) out of items.
// An empty list still has a first page; any other page past the end, or a
// page that is not a positive integer, is invalid.
func paginate[T any](items []T, raw string, size int) (Page[T], error) {
	number := 1
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page[T]{}, fmt.Errorf("%w: %q", errInvalidPage, raw)
		}
		number = n
	}

	total := len(items)
	pages := max(1, (total+size-1)/size)
	if number > pages {
		return Page[T]{}, fmt.Errorf("%w: page %d is out of range", errInvalidPage, number)
	}
	start := (number - 1) * size
	end := min(start+size, total)

	page := Page[T]{
		Items:      items[start:end],
		Page:       number,
		PageSize:   size,
		TotalCount: total,
	}
	if end < total {
		next := number + 1
		page.NextPage = &next
	}
	return page, nil
}
