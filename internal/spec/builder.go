package spec

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownField is returned when a key names a field the record does not expose
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownLookup is returned for a key suffix other than __in or __contains
	ErrUnknownLookup = errors.New("unknown lookup")
)

// Lookup selects which atomic specification a key builds
type Lookup string

// Supported lookups. LookupExact has no suffix.
const (
	LookupExact    Lookup = ""
	LookupIn       Lookup = "in"
	LookupContains Lookup = "contains"
)

const lookupSeparator = "__"

// Fields maps field names to accessors for one record type
type Fields[T any] map[string]Accessor[T]

// Names returns the field names in sorted order
func (f Fields[T]) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params maps keys (field name plus optional lookup suffix) to a scalar or a
// slice of values. Nil values are skipped.
type Params map[string]any

// SplitKey separates "sponsor_id__in" into ("sponsor_id", LookupIn).
// A key without a separator is an exact lookup.
func SplitKey(key string) (string, Lookup) {
	idx := strings.LastIndex(key, lookupSeparator)
	if idx <= 0 {
		return key, LookupExact
	}
	return key[:idx], Lookup(key[idx+len(lookupSeparator):])
}

// JoinKey is the inverse of SplitKey
func JoinKey(field string, lookup Lookup) string {
	if lookup == LookupExact {
		return field
	}
	return field + lookupSeparator + string(lookup)
}

// Builder turns field/value mappings into specifications for records of type T
type Builder[T any] struct {
	fields Fields[T]
}

// NewBuilder creates a builder over the given field table
func NewBuilder[T any](fields Fields[T]) *Builder[T] {
	return &Builder[T]{fields: fields}
}

// Atomic builds a single specification for key and value.
// For LookupIn a slice value is the membership set and a scalar becomes a
// one-element set.
func (b *Builder[T]) Atomic(key string, value any) (Specification[T], error) {
	field, lookup := SplitKey(key)
	get, ok := b.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	switch lookup {
	case LookupExact:
		return Equals(field, get, value), nil
	case LookupIn:
		values, isList := asList(value)
		if !isList {
			values = []any{value}
		}
		return In(field, get, values), nil
	case LookupContains:
		return Contains(field, get, value), nil
	default:
		return nil, fmt.Errorf("%w: %q on field %q", ErrUnknownLookup, lookup, field)
	}
}

// All combines one atomic spec per (key, value) pair with AND
func (b *Builder[T]) All(params Params) (Specification[T], error) {
	specs, err := b.atomics(params)
	if err != nil {
		return nil, err
	}
	return And(specs...), nil
}

// Any combines one atomic spec per (key, value) pair with OR
func (b *Builder[T]) Any(params Params) (Specification[T], error) {
	specs, err := b.atomics(params)
	if err != nil {
		return nil, err
	}
	return Or(specs...), nil
}

// atomics expands params into atomic specs. Keys are visited in sorted order
// so the resulting tree is deterministic.
func (b *Builder[T]) atomics(params Params) ([]Specification[T], error) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var specs []Specification[T]
	for _, key := range keys {
		value := params[key]
		if value == nil {
			continue
		}

		_, lookup := SplitKey(key)
		values, isList := asList(value)
		if !isList || lookup == LookupIn {
			s, err := b.Atomic(key, value)
			if err != nil {
				return nil, err
			}
			specs = append(specs, s)
			continue
		}

		for _, v := range values {
			if v == nil {
				continue
			}
			s, err := b.Atomic(key, v)
			if err != nil {
				return nil, err
			}
			specs = append(specs, s)
		}
	}
	return specs, nil
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}
