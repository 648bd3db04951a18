package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/felipediel/watcher/internal/repository"
	"github.com/felipediel/watcher/internal/votes"
)

// RecordsHandler serves the raw record kinds under /api/datasets
type RecordsHandler struct {
	sources  *votes.Sources
	pageSize int
	logger   *slog.Logger
}

// NewRecordsHandler creates a records handler
func NewRecordsHandler(sources *votes.Sources, pageSize int, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{sources: sources, pageSize: pageSize, logger: logger}
}

// Legislators handles GET /api/datasets/legislators
func (h *RecordsHandler) Legislators(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, h, h.sources.Legislators, votes.PersonQuery)
}

// Legislator handles GET /api/datasets/legislators/{id}
func (h *RecordsHandler) Legislator(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, h, h.sources.Legislators)
}

// Bills handles GET /api/datasets/bills
func (h *RecordsHandler) Bills(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, h, h.sources.Bills, votes.BillQuery)
}

// Bill handles GET /api/datasets/bills/{id}
func (h *RecordsHandler) Bill(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, h, h.sources.Bills)
}

// Votes handles GET /api/datasets/votes
func (h *RecordsHandler) Votes(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, h, h.sources.Votes, votes.VoteQuery)
}

// Vote handles GET /api/datasets/votes/{id}
func (h *RecordsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, h, h.sources.Votes)
}

// VoteResults handles GET /api/datasets/vote_results
func (h *RecordsHandler) VoteResults(w http.ResponseWriter, r *http.Request) {
	listRecords(w, r, h, h.sources.VoteResults, votes.VoteResultQuery)
}

// VoteResult handles GET /api/datasets/vote_results/{id}
func (h *RecordsHandler) VoteResult(w http.ResponseWriter, r *http.Request) {
	getRecord(w, r, h, h.sources.VoteResults)
}

func listRecords[T any](w http.ResponseWriter, r *http.Request, h *RecordsHandler, repo repository.Repository[T], query votes.Query[T]) {
	q := r.URL.Query()
	filter, err := query.Filter(q)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}

	items, err := repo.All(r.Context(), filter)
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

func getRecord[T any](w http.ResponseWriter, r *http.Request, h *RecordsHandler, repo repository.Repository[T]) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid id"})
		return
	}

	item, err := repo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}
