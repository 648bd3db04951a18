package votes

import (
	"net/url"

	"github.com/felipediel/watcher/internal/filter"
	"github.com/felipediel/watcher/internal/spec"
)

// Query describes how one record kind is filtered and searched
type Query[T any] struct {
	Schema       filter.Schema
	SearchFields []filter.Field
	Fields       spec.Fields[T]
}

// Backends returns the field and search backends for the kind
func (q Query[T]) Backends() []filter.Backend[T] {
	return []filter.Backend[T]{
		filter.FieldBackend[T]{Fields: q.Fields, Schema: q.Schema},
		filter.SearchBackend[T]{Fields: q.Fields, SearchFields: q.SearchFields},
	}
}

// Filter builds the combined field and search specification for values.
// A nil result means no constraint.
func (q Query[T]) Filter(values url.Values) (spec.Specification[T], error) {
	return filter.Compose(values, q.Backends()...)
}

// Query definitions per record kind
var (
	PersonQuery = Query[Person]{
		Schema: filter.Schema{
			{Name: "id", Kind: filter.Int},
			{Name: "name", Kind: filter.String},
		},
		SearchFields: []filter.Field{
			{Name: "id", Kind: filter.Int},
			{Name: "name__contains", Kind: filter.String},
		},
		Fields: PersonFields,
	}

	BillQuery = Query[Bill]{
		Schema: filter.Schema{
			{Name: "id", Kind: filter.Int},
			{Name: "title", Kind: filter.String},
			{Name: "sponsor_id", Kind: filter.Int},
		},
		SearchFields: []filter.Field{
			{Name: "id", Kind: filter.Int},
			{Name: "title__contains", Kind: filter.String},
		},
		Fields: BillFields,
	}

	VoteQuery = Query[Vote]{
		Schema: filter.Schema{
			{Name: "id", Kind: filter.Int},
			{Name: "bill_id", Kind: filter.Int},
		},
		SearchFields: []filter.Field{
			{Name: "id", Kind: filter.Int},
			{Name: "bill_id", Kind: filter.Int},
		},
		Fields: VoteFields,
	}

	VoteResultQuery = Query[VoteResult]{
		Schema: filter.Schema{
			{Name: "id", Kind: filter.Int},
			{Name: "legislator_id", Kind: filter.Int},
			{Name: "vote_id", Kind: filter.Int},
			{Name: "vote_type", Kind: filter.Int},
		},
		SearchFields: []filter.Field{
			{Name: "id", Kind: filter.Int},
			{Name: "legislator_id", Kind: filter.Int},
			{Name: "vote_id", Kind: filter.Int},
		},
		Fields: VoteResultFields,
	}

	LegislatorVoteSummaryQuery = Query[LegislatorVoteSummary]{
		Schema: filter.Schema{
			{Name: "legislator_id", Kind: filter.Int},
			{Name: "legislator_name", Kind: filter.String},
			{Name: "supported_bills", Kind: filter.Int},
			{Name: "opposed_bills", Kind: filter.Int},
		},
		SearchFields: []filter.Field{
			{Name: "legislator_id", Kind: filter.Int},
			{Name: "legislator_name__contains", Kind: filter.String},
		},
		Fields: LegislatorVoteSummaryFields,
	}

	BillVoteSummaryQuery = Query[BillVoteSummary]{
		Schema: filter.Schema{
			{Name: "bill_id", Kind: filter.Int},
			{Name: "bill_title", Kind: filter.String},
			{Name: "sponsor_id", Kind: filter.Int},
			{Name: "sponsor_name", Kind: filter.String},
			{Name: "supporters", Kind: filter.Int},
			{Name: "opposers", Kind: filter.Int},
		},
		SearchFields: []filter.Field{
			{Name: "bill_id", Kind: filter.Int},
			{Name: "bill_title__contains", Kind: filter.String},
			{Name: "sponsor_name__contains", Kind: filter.String},
		},
		Fields: BillVoteSummaryFields,
	}
)
