// Package spec provides composable predicates over records.
//
// Field access goes through explicit accessor tables (Fields) so predicates
// stay generic over the record type without reflection.
package spec

import (
	"slices"
	"strings"
)

// Specification is a predicate a record either satisfies or not
type Specification[T any] interface {
	IsSatisfiedBy(item T) bool
}

// Func adapts a plain function to a Specification
type Func[T any] func(item T) bool

// IsSatisfiedBy calls f(item)
func (f Func[T]) IsSatisfiedBy(item T) bool {
	return f(item)
}

// Accessor returns the value of one field of a record
type Accessor[T any] func(item T) any

// EqualsSpecification is satisfied when the field equals Value
type EqualsSpecification[T any] struct {
	Field string
	Get   Accessor[T]
	Value any
}

// Equals builds an EqualsSpecification
func Equals[T any](field string, get Accessor[T], value any) *EqualsSpecification[T] {
	return &EqualsSpecification[T]{Field: field, Get: get, Value: normalize(value)}
}

// IsSatisfiedBy reports whether the field equals the expected value
func (s *EqualsSpecification[T]) IsSatisfiedBy(item T) bool {
	return equal(normalize(s.Get(item)), s.Value)
}

// InSpecification is satisfied when the field is one of Values
type InSpecification[T any] struct {
	Field  string
	Get    Accessor[T]
	Values []any
}

// In builds an InSpecification
func In[T any](field string, get Accessor[T], values []any) *InSpecification[T] {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalize(v)
	}
	return &InSpecification[T]{Field: field, Get: get, Values: normalized}
}

// IsSatisfiedBy reports whether the field is a member of Values
func (s *InSpecification[T]) IsSatisfiedBy(item T) bool {
	got := normalize(s.Get(item))
	for _, v := range s.Values {
		if equal(got, v) {
			return true
		}
	}
	return false
}

// ContainsSpecification is satisfied when the field's own content holds Value.
// String fields match substrings; slice fields match members.
type ContainsSpecification[T any] struct {
	Field string
	Get   Accessor[T]
	Value any
}

// Contains builds a ContainsSpecification
func Contains[T any](field string, get Accessor[T], value any) *ContainsSpecification[T] {
	return &ContainsSpecification[T]{Field: field, Get: get, Value: normalize(value)}
}

// IsSatisfiedBy reports whether the field contains the value
func (s *ContainsSpecification[T]) IsSatisfiedBy(item T) bool {
	switch got := normalize(s.Get(item)).(type) {
	case string:
		needle, ok := s.Value.(string)
		return ok && strings.Contains(got, needle)
	case []string:
		needle, ok := s.Value.(string)
		return ok && slices.Contains(got, needle)
	case []int64:
		needle, ok := s.Value.(int64)
		return ok && slices.Contains(got, needle)
	case []int:
		needle, ok := s.Value.(int64)
		if !ok {
			return false
		}
		for _, v := range got {
			if int64(v) == needle {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// AndSpecification is satisfied when every child is; an empty And always is.
type AndSpecification[T any] struct {
	Specs []Specification[T]
}

// And combines specs with logical AND
func And[T any](specs ...Specification[T]) *AndSpecification[T] {
	return &AndSpecification[T]{Specs: specs}
}

// IsSatisfiedBy reports whether all children are satisfied
func (s *AndSpecification[T]) IsSatisfiedBy(item T) bool {
	for _, child := range s.Specs {
		if !child.IsSatisfiedBy(item) {
			return false
		}
	}
	return true
}

// OrSpecification is satisfied when any child is; an empty Or never is.
type OrSpecification[T any] struct {
	Specs []Specification[T]
}

// Or combines specs with logical OR
func Or[T any](specs ...Specification[T]) *OrSpecification[T] {
	return &OrSpecification[T]{Specs: specs}
}

// IsSatisfiedBy reports whether any child is satisfied
func (s *OrSpecification[T]) IsSatisfiedBy(item T) bool {
	for _, child := range s.Specs {
		if child.IsSatisfiedBy(item) {
			return true
		}
	}
	return false
}

// Filter returns the items satisfying s, preserving order.
// A nil spec keeps every item.
func Filter[T any](items []T, s Specification[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s == nil || s.IsSatisfiedBy(item) {
			out = append(out, item)
		}
	}
	return out
}

// normalize folds integer kinds into int64 so that values coming from query
// parsing and values read from records compare equal.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case *int64:
		if n == nil {
			return nil
		}
		return *n
	case *string:
		if n == nil {
			return nil
		}
		return *n
	default:
		return v
	}
}

// equal compares normalized values. Slices and maps never compare equal.
func equal(a, b any) bool {
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func isComparable(v any) bool {
	switch v.(type) {
	case []any, []string, []int64, []int, map[string]any:
		return false
	}
	return true
}
