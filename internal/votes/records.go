package votes

import (
	"github.com/felipediel/watcher/internal/repository"
	"github.com/felipediel/watcher/internal/spec"
)

// Source columns per record kind, in the order they appear in the files
var (
	PersonColumns     = []string{"id", "name"}
	BillColumns       = []string{"id", "title", "sponsor_id"}
	VoteColumns       = []string{"id", "bill_id"}
	VoteResultColumns = []string{"id", "legislator_id", "vote_id", "vote_type"}
)

// BuildPerson converts a legislators row
func BuildPerson(row repository.Row) (Person, error) {
	id, err := row.Int("id")
	if err != nil {
		return Person{}, err
	}
	name, err := row.String("name")
	if err != nil {
		return Person{}, err
	}
	return Person{ID: id, Name: name}, nil
}

// BuildBill converts a bills row
func BuildBill(row repository.Row) (Bill, error) {
	id, err := row.Int("id")
	if err != nil {
		return Bill{}, err
	}
	title, err := row.String("title")
	if err != nil {
		return Bill{}, err
	}
	sponsorID, err := row.Int("sponsor_id")
	if err != nil {
		return Bill{}, err
	}
	return Bill{ID: id, Title: title, SponsorID: sponsorID}, nil
}

// BuildVote converts a votes row
func BuildVote(row repository.Row) (Vote, error) {
	id, err := row.Int("id")
	if err != nil {
		return Vote{}, err
	}
	billID, err := row.Int("bill_id")
	if err != nil {
		return Vote{}, err
	}
	return Vote{ID: id, BillID: billID}, nil
}

// BuildVoteResult converts a vote_results row
func BuildVoteResult(row repository.Row) (VoteResult, error) {
	id, err := row.Int("id")
	if err != nil {
		return VoteResult{}, err
	}
	legislatorID, err := row.Int("legislator_id")
	if err != nil {
		return VoteResult{}, err
	}
	voteID, err := row.Int("vote_id")
	if err != nil {
		return VoteResult{}, err
	}
	raw, err := row.String("vote_type")
	if err != nil {
		return VoteResult{}, err
	}
	voteType, err := ParseVoteType(raw)
	if err != nil {
		return VoteResult{}, &repository.ParseError{Column: "vote_type", Err: err}
	}
	return VoteResult{ID: id, LegislatorID: legislatorID, VoteID: voteID, VoteType: voteType}, nil
}

// Primary keys
func personKey(p Person) int64         { return p.ID }
func billKey(b Bill) int64             { return b.ID }
func voteKey(v Vote) int64             { return v.ID }
func voteResultKey(r VoteResult) int64 { return r.ID }

// Field tables for specifications
var (
	PersonFields = spec.Fields[Person]{
		"id":   func(p Person) any { return p.ID },
		"name": func(p Person) any { return p.Name },
	}

	BillFields = spec.Fields[Bill]{
		"id":         func(b Bill) any { return b.ID },
		"title":      func(b Bill) any { return b.Title },
		"sponsor_id": func(b Bill) any { return b.SponsorID },
	}

	VoteFields = spec.Fields[Vote]{
		"id":      func(v Vote) any { return v.ID },
		"bill_id": func(v Vote) any { return v.BillID },
	}

	VoteResultFields = spec.Fields[VoteResult]{
		"id":            func(r VoteResult) any { return r.ID },
		"legislator_id": func(r VoteResult) any { return r.LegislatorID },
		"vote_id":       func(r VoteResult) any { return r.VoteID },
		"vote_type":     func(r VoteResult) any { return int64(r.VoteType) },
	}

	LegislatorVoteSummaryFields = spec.Fields[LegislatorVoteSummary]{
		"legislator_id":   func(s LegislatorVoteSummary) any { return s.LegislatorID },
		"legislator_name": func(s LegislatorVoteSummary) any { return s.LegislatorName },
		"supported_bills": func(s LegislatorVoteSummary) any { return int64(s.SupportedBills) },
		"opposed_bills":   func(s LegislatorVoteSummary) any { return int64(s.OpposedBills) },
	}

	BillVoteSummaryFields = spec.Fields[BillVoteSummary]{
		"bill_id":      func(s BillVoteSummary) any { return s.BillID },
		"bill_title":   func(s BillVoteSummary) any { return s.BillTitle },
		"sponsor_id":   func(s BillVoteSummary) any { return s.SponsorID },
		"sponsor_name": func(s BillVoteSummary) any { return s.SponsorName },
		"supporters":   func(s BillVoteSummary) any { return int64(s.Supporters) },
		"opposers":     func(s BillVoteSummary) any { return int64(s.Opposers) },
	}
)
