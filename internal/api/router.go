package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/felipediel/watcher/internal/votes"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Sources *votes.Sources
	Service *votes.Service
	Logger  *slog.Logger

	// Health checks keyed by service name
	Checks map[string]HealthChecker

	PageSize           int
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	CORSOrigins        []string
	CORSAllowAll       bool

	// SummaryRateLimitPerMinute applies to /api/summaries on top of the
	// global limit. Zero falls back to RateLimitPerMinute.
	SummaryRateLimitPerMinute int
}

// RouterResult holds the router and resources that need cleanup
type RouterResult struct {
	Router       *chi.Mux
	RateLimiters *RateLimiters
}

// NewRouter creates and configures the HTTP router.
// Caller must call result.RateLimiters.Stop() on shutdown.
func NewRouter(cfg *RouterConfig) *RouterResult {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 15
	}
	service := cfg.Service
	if service == nil {
		service = votes.NewService(logger)
	}
	limit := cfg.RateLimitPerMinute
	if limit <= 0 {
		limit = 100
	}
	summaryLimit := cfg.SummaryRateLimitPerMinute
	if summaryLimit <= 0 {
		summaryLimit = limit
	}

	r := chi.NewRouter()
	rateLimiters := NewRateLimiters(limit, summaryLimit)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.CORSOrigins, cfg.CORSAllowAll))
	r.Use(rateLimiters.Global.Middleware)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/api/health", NewHealthHandler(cfg.Checks))

	records := NewRecordsHandler(cfg.Sources, pageSize, logger)
	r.Route("/api/datasets", func(r chi.Router) {
		r.Get("/legislators", records.Legislators)
		r.Get("/legislators/{id}", records.Legislator)
		r.Get("/bills", records.Bills)
		r.Get("/bills/{id}", records.Bill)
		r.Get("/votes", records.Votes)
		r.Get("/votes/{id}", records.Vote)
		r.Get("/vote_results", records.VoteResults)
		r.Get("/vote_results/{id}", records.VoteResult)
	})

	summaries := NewSummariesHandler(cfg.Sources, service, pageSize, logger)
	r.Route("/api/summaries", func(r chi.Router) {
		r.Use(rateLimiters.Summaries.Middleware)
		r.Get("/legislators_votes", summaries.Legislators)
		r.Get("/bills_votes", summaries.Bills)
	})

	return &RouterResult{
		Router:       r,
		RateLimiters: rateLimiters,
	}
}
