package api

import (
	"log/slog"
	"net/http"

	"github.com/felipediel/watcher/internal/votes"
)

// SummariesHandler serves the vote summaries under /api/summaries
type SummariesHandler struct {
	sources  *votes.Sources
	service  *votes.Service
	pageSize int
	logger   *slog.Logger
}

// NewSummariesHandler creates a summaries handler
func NewSummariesHandler(sources *votes.Sources, service *votes.Service, pageSize int, logger *slog.Logger) *SummariesHandler {
	return &SummariesHandler{sources: sources, service: service, pageSize: pageSize, logger: logger}
}

// Legislators handles GET /api/summaries/legislators_votes
func (h *SummariesHandler) Legislators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := votes.LegislatorVoteSummaryQuery.Filter(q)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	items, err := h.service.LegislatorSummaries(r.Context(), h.sources, filter)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	page, err := paginate(items, q.Get("page"), h.pageSize)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Bills handles GET /api/summaries/bills_votes
func (h *SummariesHandler) Bills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := votes.BillVoteSummaryQuery.Filter(q)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	items, err := h.service.BillSummaries(r.Context(), h.sources, filter)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	page, err := paginate(items, q.Get("page"), h.pageSize)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}
