package votes

import (
	"github.com/felipediel/watcher/internal/repository"
	"github.com/felipediel/watcher/internal/storage"
)

// Sources bundles the repositories for the four record kinds
type Sources struct {
	Legislators repository.Repository[Person]
	Bills       repository.Repository[Bill]
	Votes       repository.Repository[Vote]
	VoteResults repository.Repository[VoteResult]
}

// Paths holds the CSV locator for each record kind
type Paths struct {
	Legislators string
	Bills       string
	Votes       string
	VoteResults string
}

// Tables holds the table name for each record kind
type Tables struct {
	Legislators string
	Bills       string
	Votes       string
	VoteResults string
}

// NewCSVSources builds CSV repositories for every record kind.
// Any missing locator fails with repository.ErrConfiguration.
func NewCSVSources(opener storage.Opener, paths Paths) (*Sources, error) {
	legislators, err := repository.NewCSV(opener, paths.Legislators, BuildPerson, personKey)
	if err != nil {
		return nil, err
	}
	bills, err := repository.NewCSV(opener, paths.Bills, BuildBill, billKey)
	if err != nil {
		return nil, err
	}
	votes, err := repository.NewCSV(opener, paths.Votes, BuildVote, voteKey)
	if err != nil {
		return nil, err
	}
	voteResults, err := repository.NewCSV(opener, paths.VoteResults, BuildVoteResult, voteResultKey)
	if err != nil {
		return nil, err
	}

	return &Sources{
		Legislators: legislators,
		Bills:       bills,
		Votes:       votes,
		VoteResults: voteResults,
	}, nil
}

// NewPostgresSources builds table-backed repositories for every record kind
func NewPostgresSources(db repository.Querier, tables Tables) (*Sources, error) {
	legislators, err := repository.NewPostgres(db, tables.Legislators, PersonColumns, BuildPerson, personKey)
	if err != nil {
		return nil, err
	}
	bills, err := repository.NewPostgres(db, tables.Bills, BillColumns, BuildBill, billKey)
	if err != nil {
		return nil, err
	}
	votes, err := repository.NewPostgres(db, tables.Votes, VoteColumns, BuildVote, voteKey)
	if err != nil {
		return nil, err
	}
	voteResults, err := repository.NewPostgres(db, tables.VoteResults, VoteResultColumns, BuildVoteResult, voteResultKey)
	if err != nil {
		return nil, err
	}

	return &Sources{
		Legislators: legislators,
		Bills:       bills,
		Votes:       votes,
		VoteResults: voteResults,
	}, nil
}

// TableColumns maps each configured table to the columns it must expose
func (t Tables) TableColumns() map[string][]string {
	return map[string][]string{
		t.Legislators: PersonColumns,
		t.Bills:       BillColumns,
		t.Votes:       VoteColumns,
		t.VoteResults: VoteResultColumns,
	}
}
