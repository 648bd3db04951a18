package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/felipediel/watcher/internal/votes"
)

// Output formats
const (
	formatJSON  = "json"
	formatTable = "table"
)

// columns renders one record kind as a table
type columns[T any] struct {
	headers []string
	row     func(T) []string
}

var (
	personColumns = columns[votes.Person]{
		headers: []string{"ID", "NAME"},
		row: func(p votes.Person) []string {
			return []string{itoa(p.ID), p.Name}
		},
	}
	billColumns = columns[votes.Bill]{
		headers: []string{"ID", "TITLE", "SPONSOR ID"},
		row: func(b votes.Bill) []string {
			return []string{itoa(b.ID), b.Title, itoa(b.SponsorID)}
		},
	}
	voteColumns = columns[votes.Vote]{
		headers: []string{"ID", "BILL ID"},
		row: func(v votes.Vote) []string {
			return []string{itoa(v.ID), itoa(v.BillID)}
		},
	}
	voteResultColumns = columns[votes.VoteResult]{
		headers: []string{"ID", "LEGISLATOR ID", "VOTE ID", "VOTE"},
		row: func(r votes.VoteResult) []string {
			return []string{itoa(r.ID), itoa(r.LegislatorID), itoa(r.VoteID), r.VoteType.String()}
		},
	}
	legislatorSummaryColumns = columns[votes.LegislatorVoteSummary]{
		headers: []string{"LEGISLATOR ID", "NAME", "SUPPORTED", "OPPOSED"},
		row: func(s votes.LegislatorVoteSummary) []string {
			return []string{itoa(s.LegislatorID), s.LegislatorName, strconv.Itoa(s.SupportedBills), strconv.Itoa(s.OpposedBills)}
		},
	}
	billSummaryColumns = columns[votes.BillVoteSummary]{
		headers: []string{"BILL ID", "TITLE", "SPONSOR ID", "SPONSOR", "SUPPORTERS", "OPPOSERS"},
		row: func(s votes.BillVoteSummary) []string {
			sponsorID := votes.NotAvailable
			if s.SponsorID != nil {
				sponsorID = itoa(*s.SponsorID)
			}
			return []string{itoa(s.BillID), s.BillTitle, sponsorID, s.SponsorName, strconv.Itoa(s.Supporters), strconv.Itoa(s.Opposers)}
		},
	}
)

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// render writes items as JSON or as an aligned table
func render[T any](w io.Writer, format string, cols columns[T], items []T) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case formatTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(cols.headers, "\t"))
		for _, item := range items {
			fmt.Fprintln(tw, strings.Join(cols.row(item), "\t"))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatTable)
	}
}
