// Package filter turns request query parameters into record specifications.
package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/felipediel/watcher/internal/spec"
)

// SearchParam is the query parameter read by SearchBackend
const SearchParam = "search"

// Kind is the type a query value is coerced to
type Kind int

const (
	String Kind = iota
	Int
)

func (k Kind) String() string {
	if k == Int {
		return "integer"
	}
	return "string"
}

// Field declares one filterable field. In a search field list Name may carry
// a lookup suffix, e.g. "name__contains".
type Field struct {
	Name string
	Kind Kind
}

// ValidationError reports a query value that could not be coerced
type ValidationError struct {
	Param string
	Value string
	Kind  Kind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: expected %s", e.Value, e.Param, e.Kind)
}

// Coerce converts a raw query value to k
func (k Kind) Coerce(raw string) (any, error) {
	if k == Int {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return raw, nil
}

// Schema is the set of fields a record kind can be filtered on
type Schema []Field

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Params extracts the declared fields from q as typed values. Every value is
// a list, one element per occurrence of the parameter; empty occurrences are
// dropped. Undeclared names and unknown lookups are ignored.
func (s Schema) Params(q url.Values) (spec.Params, error) {
	params := spec.Params{}

	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, lookup := spec.SplitKey(key)
		field, ok := s.field(name)
		if !ok {
			continue
		}
		switch lookup {
		case spec.LookupExact, spec.LookupIn, spec.LookupContains:
		default:
			continue
		}

		var values []any
		for _, raw := range q[key] {
			if lookup == spec.LookupIn {
				for _, part := range strings.Split(raw, ",") {
					v, err := coerce(key, field.Kind, part)
					if err != nil {
						return nil, err
					}
					if v != nil {
						values = append(values, v)
					}
				}
				continue
			}
			v, err := coerce(key, field.Kind, raw)
			if err != nil {
				return nil, err
			}
			if v != nil {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			params[key] = values
		}
	}
	return params, nil
}

// coerce returns nil for blank input
func coerce(param string, kind Kind, raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := kind.Coerce(raw)
	if err != nil {
		return nil, &ValidationError{Param: param, Value: raw, Kind: kind}
	}
	return v, nil
}

// Backend builds a specification from query parameters. A nil specification
// means the backend does not constrain the result.
type Backend[T any] interface {
	Build(q url.Values) (spec.Specification[T], error)
}

// FieldBackend ANDs one condition per declared query parameter
type FieldBackend[T any] struct {
	Fields spec.Fields[T]
	Schema Schema
}

func (b FieldBackend[T]) Build(q url.Values) (spec.Specification[T], error) {
	params, err := b.Schema.Params(q)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, nil
	}
	s, err := spec.NewBuilder(b.Fields).All(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build field filter: %w", err)
	}
	return s, nil
}

// SearchBackend matches the search term against several fields at once.
// The term is coerced per field; fields it does not fit are left out.
type SearchBackend[T any] struct {
	Fields       spec.Fields[T]
	SearchFields []Field
}

func (b SearchBackend[T]) Build(q url.Values) (spec.Specification[T], error) {
	var terms []string
	for _, term := range q[SearchParam] {
		if strings.TrimSpace(term) != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, nil
	}

	builder := spec.NewBuilder(b.Fields)
	var specs []spec.Specification[T]
	for _, term := range terms {
		for _, f := range b.SearchFields {
			v, err := f.Kind.Coerce(term)
			if err != nil {
				continue
			}
			s, err := builder.Atomic(f.Name, v)
			if err != nil {
				return nil, fmt.Errorf("failed to build search filter: %w", err)
			}
			specs = append(specs, s)
		}
	}
	return spec.Or(specs...), nil
}

// Compose ANDs the specifications of every backend that constrains q
func Compose[T any](q url.Values, backends ...Backend[T]) (spec.Specification[T], error) {
	var specs []spec.Specification[T]
	for _, b := range backends {
		s, err := b.Build(q)
		if err != nil {
			return nil, err
		}
		if s != nil {
			specs = append(specs, s)
		}
	}
	switch len(specs) {
	case 0:
		return nil, nil
	case 1:
		return specs[0], nil
	default:
		return spec.And(specs...), nil
	}
}
