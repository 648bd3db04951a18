package filter

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"github.com/felipediel/watcher/internal/spec"
)

type bill struct {
	ID      int64
	Title   string
	Sponsor int64
}

var billFields = spec.Fields[bill]{
	"id":         func(b bill) any { return b.ID },
	"title":      func(b bill) any { return b.Title },
	"sponsor_id": func(b bill) any { return b.Sponsor },
}

var billSchema = Schema{
	{Name: "id", Kind: Int},
	{Name: "title", Kind: String},
	{Name: "sponsor_id", Kind: Int},
}

var billSearch = []Field{
	{Name: "id", Kind: Int},
	{Name: "title__contains", Kind: String},
}

var bills = []bill{
	{ID: 1, Title: "Build Back Better Act", Sponsor: 10},
	{ID: 2, Title: "Infrastructure Act", Sponsor: 20},
	{ID: 42, Title: "Act 1", Sponsor: 10},
}

func ids(items []bill) []int64 {
	out := []int64{}
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}

func TestSchemaParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  spec.Params
	}{
		{"empty", "", spec.Params{}},
		{"int", "id=7", spec.Params{"id": []any{int64(7)}}},
		{"repeated", "title=a&title=b", spec.Params{"title": []any{"a", "b"}}},
		{"undeclared ignored", "page=2&foo=bar", spec.Params{}},
		{"unknown lookup ignored", "id__gt=3", spec.Params{}},
		{"blank dropped", "id=&title=x", spec.Params{"title": []any{"x"}}},
		{"in list", "sponsor_id__in=10,20", spec.Params{"sponsor_id__in": []any{int64(10), int64(20)}}},
		{"contains", "title__contains=Act", spec.Params{"title__contains": []any{"Act"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got, err := billSchema.Params(q)
			if err != nil {
				t.Fatalf("Params() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Params() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSchemaParamsValidation(t *testing.T) {
	for _, query := range []string{"id=abc", "sponsor_id__in=1,x"} {
		q, _ := url.ParseQuery(query)
		_, err := billSchema.Params(q)

		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Params(%q) error = %v, want *ValidationError", query, err)
			continue
		}
		if ve.Kind != Int {
			t.Errorf("ValidationError.Kind = %v, want Int", ve.Kind)
		}
	}
}

func TestFieldBackend(t *testing.T) {
	b := FieldBackend[bill]{Fields: billFields, Schema: billSchema}

	s, err := b.Build(url.Values{})
	if err != nil || s != nil {
		t.Fatalf("Build(empty) = %v, %v; want nil, nil", s, err)
	}

	s, err = b.Build(url.Values{"sponsor_id": {"10"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(spec.Filter(bills, s)); !reflect.DeepEqual(got, []int64{1, 42}) {
		t.Errorf("sponsor_id=10 matched %v", got)
	}

	// repeated exact values must all hold
	s, err = b.Build(url.Values{"id": {"1", "2"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(spec.Filter(bills, s)); len(got) != 0 {
		t.Errorf("id=1&id=2 matched %v, want none", got)
	}

	s, err = b.Build(url.Values{"id__in": {"1,2"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(spec.Filter(bills, s)); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("id__in=1,2 matched %v", got)
	}
}

func TestSearchBackend(t *testing.T) {
	b := SearchBackend[bill]{Fields: billFields, SearchFields: billSearch}

	tests := []struct {
		term string
		want []int64
	}{
		// "42" is an id and not part of any title
		{"42", []int64{42}},
		// "1" is an id and also part of "Act 1"
		{"1", []int64{1, 42}},
		// not an integer: only the title is searched
		{"Infra", []int64{2}},
		{"nothing", []int64{}},
	}

	for _, tt := range tests {
		s, err := b.Build(url.Values{SearchParam: {tt.term}})
		if err != nil {
			t.Fatalf("Build(%q) error: %v", tt.term, err)
		}
		if got := ids(spec.Filter(bills, s)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("search=%q matched %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestSearchBackendNoTerm(t *testing.T) {
	b := SearchBackend[bill]{Fields: billFields, SearchFields: billSearch}
	for _, q := range []url.Values{{}, {SearchParam: {""}}, {SearchParam: {"  "}}} {
		s, err := b.Build(q)
		if err != nil || s != nil {
			t.Errorf("Build(%v) = %v, %v; want nil, nil", q, s, err)
		}
	}
}

func TestSearchBackendNoCoercibleField(t *testing.T) {
	b := SearchBackend[bill]{Fields: billFields, SearchFields: []Field{{Name: "id", Kind: Int}}}
	s, err := b.Build(url.Values{SearchParam: {"abc"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := spec.Filter(bills, s); len(got) != 0 {
		t.Errorf("matched %v, want none", got)
	}
}

func TestSearchBackendMisconfigured(t *testing.T) {
	b := SearchBackend[bill]{Fields: billFields, SearchFields: []Field{{Name: "missing", Kind: String}}}
	_, err := b.Build(url.Values{SearchParam: {"x"}})
	if !errors.Is(err, spec.ErrUnknownField) {
		t.Errorf("error = %v, want ErrUnknownField", err)
	}
}

func TestCompose(t *testing.T) {
	backends := []Backend[bill]{
		FieldBackend[bill]{Fields: billFields, Schema: billSchema},
		SearchBackend[bill]{Fields: billFields, SearchFields: billSearch},
	}

	s, err := Compose(url.Values{}, backends...)
	if err != nil || s != nil {
		t.Fatalf("Compose(empty) = %v, %v; want nil, nil", s, err)
	}

	s, err = Compose(url.Values{"sponsor_id": {"10"}, SearchParam: {"Act"}}, backends...)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(spec.Filter(bills, s)); !reflect.DeepEqual(got, []int64{1, 42}) {
		t.Errorf("matched %v", got)
	}

	_, err = Compose(url.Values{"id": {"x"}}, backends...)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want *ValidationError", err)
	}
}
