package votes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felipediel/watcher/internal/repository"
	"github.com/felipediel/watcher/internal/spec"
)

// Service joins raw vote records into summaries. It holds no state besides
// the logger, so one Service may serve concurrent callers.
type Service struct {
	logger *slog.Logger
}

// NewService creates a summary service. Unresolved references are logged at
// debug level on logger; a nil logger discards them.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{logger: logger}
}

// billSet is a set of distinct bill ids
type billSet map[int64]struct{}

// SummarizeByLegislator counts, per legislator, the distinct bills voted yes
// and no. Summaries come out in order of each legislator's first vote result.
// Results pointing at unknown votes are skipped; unknown legislators are
// reported as "N/A" under their raw id.
func (s *Service) SummarizeByLegislator(
	ctx context.Context,
	voteResults repository.Repository[VoteResult],
	votes repository.Repository[Vote],
	legislators repository.Repository[Person],
	filter spec.Specification[LegislatorVoteSummary],
) ([]LegislatorVoteSummary, error) {
	results, err := voteResults.All(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load vote results: %w", err)
	}
	voteByID, err := votes.Dict(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	personByID, err := legislators.Dict(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load legislators: %w", err)
	}

	var order []int64
	supported := make(map[int64]billSet)
	opposed := make(map[int64]billSet)

	for _, result := range results {
		vote, ok := voteByID[result.VoteID]
		if !ok {
			s.logger.Debug("Vote not found", "vote_id", result.VoteID, "vote_result_id", result.ID)
			continue
		}

		if _, seen := supported[result.LegislatorID]; !seen {
			order = append(order, result.LegislatorID)
			supported[result.LegislatorID] = billSet{}
			opposed[result.LegislatorID] = billSet{}
		}

		switch result.VoteType {
		case VoteYes:
			supported[result.LegislatorID][vote.BillID] = struct{}{}
		case VoteNo:
			opposed[result.LegislatorID][vote.BillID] = struct{}{}
		}
	}

	summaries := make([]LegislatorVoteSummary, 0, len(order))
	for _, legislatorID := range order {
		name := NotAvailable
		if person, ok := personByID[legislatorID]; ok {
			name = person.Name
		} else {
			s.logger.Debug("Legislator not found", "legislator_id", legislatorID)
		}

		summaries = append(summaries, LegislatorVoteSummary{
			LegislatorID:   legislatorID,
			LegislatorName: name,
			SupportedBills: len(supported[legislatorID]),
			OpposedBills:   len(opposed[legislatorID]),
		})
	}

	return spec.Filter(summaries, filter), nil
}

// SummarizeByBill counts, per bill, the yes and no vote results cast on it.
// Every result row counts, so a legislator voting twice is counted twice.
// Summaries come out in order of each bill's first vote result.
func (s *Service) SummarizeByBill(
	ctx context.Context,
	votes repository.Repository[Vote],
	voteResults repository.Repository[VoteResult],
	bills repository.Repository[Bill],
	legislators repository.Repository[Person],
	filter spec.Specification[BillVoteSummary],
) ([]BillVoteSummary, error) {
	voteByID, err := votes.Dict(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	results, err := voteResults.All(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load vote results: %w", err)
	}
	billByID, err := bills.Dict(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	personByID, err := legislators.Dict(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load legislators: %w", err)
	}

	var order []int64
	byBill := make(map[int64]*BillVoteSummary)

	for _, result := range results {
		vote, ok := voteByID[result.VoteID]
		if !ok {
			s.logger.Debug("Vote not found", "vote_id", result.VoteID, "vote_result_id", result.ID)
			continue
		}

		summary, ok := byBill[vote.BillID]
		if !ok {
			summary = s.newBillSummary(vote.BillID, billByID, personByID)
			byBill[vote.BillID] = summary
			order = append(order, vote.BillID)
		}

		switch result.VoteType {
		case VoteYes:
			summary.Supporters++
		case VoteNo:
			summary.Opposers++
		}
	}

	summaries := make([]BillVoteSummary, 0, len(order))
	for _, billID := range order {
		summaries = append(summaries, *byBill[billID])
	}

	return spec.Filter(summaries, filter), nil
}

// newBillSummary resolves the bill and its sponsor, falling back to "N/A"
func (s *Service) newBillSummary(billID int64, billByID map[int64]Bill, personByID map[int64]Person) *BillVoteSummary {
	bill, ok := billByID[billID]
	if !ok {
		s.logger.Debug("Bill not found", "bill_id", billID)
		return &BillVoteSummary{
			BillID:      billID,
			BillTitle:   NotAvailable,
			SponsorName: NotAvailable,
		}
	}

	sponsorID := bill.SponsorID
	summary := &BillVoteSummary{
		BillID:      bill.ID,
		BillTitle:   bill.Title,
		SponsorID:   &sponsorID,
		SponsorName: NotAvailable,
	}
	if sponsor, ok := personByID[bill.SponsorID]; ok {
		summary.SponsorName = sponsor.Name
	} else {
		s.logger.Debug("Sponsor not found", "sponsor_id", bill.SponsorID, "bill_id", bill.ID)
	}
	return summary
}

// LegislatorSummaries runs SummarizeByLegislator over src
func (s *Service) LegislatorSummaries(ctx context.Context, src *Sources, filter spec.Specification[LegislatorVoteSummary]) ([]LegislatorVoteSummary, error) {
	return s.SummarizeByLegislator(ctx, src.VoteResults, src.Votes, src.Legislators, filter)
}

// BillSummaries runs SummarizeByBill over src
func (s *Service) BillSummaries(ctx context.Context, src *Sources, filter spec.Specification[BillVoteSummary]) ([]BillVoteSummary, error) {
	return s.SummarizeByBill(ctx, src.Votes, src.VoteResults, src.Bills, src.Legislators, filter)
}
