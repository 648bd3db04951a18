// Package votes holds the legislative records and the services that
// summarize vote results per legislator and per bill.
package votes

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is the display value for references that could not be resolved
const NotAvailable = "N/A"

// VoteType is how a legislator voted on a bill
type VoteType int8

// Vote type constants, matching the source encoding
const (
	VoteYes VoteType = 1
	VoteNo  VoteType = 2
)

// ParseVoteType decodes the source encoding ("1" or "2")
func ParseVoteType(s string) (VoteType, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid vote type %q", s)
	}
	v := VoteType(n)
	if !v.Valid() {
		return 0, fmt.Errorf("invalid vote type %q", s)
	}
	return v, nil
}

// Valid reports whether v is one of the known vote types
func (v VoteType) Valid() bool {
	return v == VoteYes || v == VoteNo
}

func (v VoteType) String() string {
	switch v {
	case VoteYes:
		return "YES"
	case VoteNo:
		return "NO"
	default:
		return fmt.Sprintf("VoteType(%d)", int8(v))
	}
}

// Person is a legislator, also referenced as a bill sponsor
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Bill is a piece of legislation
type Bill struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	SponsorID int64  `json:"sponsor_id"`
}

// Vote is a roll call on a bill
type Vote struct {
	ID     int64 `json:"id"`
	BillID int64 `json:"bill_id"`
}

// VoteResult is one legislator's vote in a roll call
type VoteResult struct {
	ID           int64    `json:"id"`
	LegislatorID int64    `json:"legislator_id"`
	VoteID       int64    `json:"vote_id"`
	VoteType     VoteType `json:"vote_type"`
}

// LegislatorVoteSummary counts the distinct bills a legislator supported or opposed
type LegislatorVoteSummary struct {
	LegislatorID   int64  `json:"legislator_id"`
	LegislatorName string `json:"legislator_name"`
	SupportedBills int    `json:"supported_bills"`
	OpposedBills   int    `json:"opposed_bills"`
}

// BillVoteSummary counts the yes and no vote results cast on a bill.
// SponsorID is nil when the bill itself could not be resolved.
type BillVoteSummary struct {
	BillID      int64  `json:"bill_id"`
	BillTitle   string `json:"bill_title"`
	SponsorID   *int64 `json:"sponsor_id"`
	SponsorName string `json:"sponsor_name"`
	Supporters  int    `json:"supporters"`
	Opposers    int    `json:"opposers"`
}
