package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felipediel/watcher/internal/storage"
	"github.com/felipediel/watcher/internal/votes"
)

var testPaths = votes.Paths{
	Legislators: "legislators.csv",
	Bills:       "bills.csv",
	Votes:       "votes.csv",
	VoteResults: "vote_results.csv",
}

func newTestRouter(t *testing.T, mutate func(*RouterConfig)) http.Handler {
	t.Helper()
	sources, err := votes.NewCSVSources(storage.Dir{Root: "testdata"}, testPaths)
	if err != nil {
		t.Fatalf("NewCSVSources() error: %v", err)
	}

	cfg := &RouterConfig{
		Sources:  sources,
		Service:  votes.NewService(nil),
		PageSize: 15,
	}
	if mutate != nil {
		mutate(cfg)
	}

	result := NewRouter(cfg)
	t.Cleanup(result.RateLimiters.Stop)
	return result.Router
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil)
	rec := get(t, h, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decode[HealthResponse](t, rec); body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
}

func TestHealthDegraded(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.Checks = map[string]HealthChecker{
			"database": HealthFunc(func(context.Context) error { return errors.New("down") }),
		}
	})

	rec := get(t, h, "/api/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	body := decode[HealthResponse](t, rec)
	if body.Status != "degraded" || body.Services["database"] != "unhealthy" {
		t.Errorf("body = %+v", body)
	}
}

func TestListLegislators(t *testing.T) {
	rec := get(t, newTestRouter(t, nil), "/api/datasets/legislators")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	page := decode[Page[votes.Person]](t, rec)
	if page.TotalCount != 5 || len(page.Items) != 5 || page.NextPage != nil {
		t.Errorf("page = %+v", page)
	}
	if page.Page != 1 || page.PageSize != 15 {
		t.Errorf("page number/size = %d/%d", page.Page, page.PageSize)
	}
	if page.Items[0].ID != 400440 {
		t.Errorf("first item = %+v, want source order", page.Items[0])
	}
}

func TestListPagination(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) { cfg.PageSize = 2 })

	rec := get(t, h, "/api/datasets/legislators?page=2")
	page := decode[Page[votes.Person]](t, rec)
	if len(page.Items) != 2 || page.NextPage == nil || *page.NextPage != 3 {
		t.Errorf("page 2 = %+v", page)
	}
	if page.Items[0].ID != 412421 {
		t.Errorf("page 2 starts at %d, want 412421", page.Items[0].ID)
	}

	rec = get(t, h, "/api/datasets/legislators?page=3")
	page = decode[Page[votes.Person]](t, rec)
	if len(page.Items) != 1 || page.NextPage != nil {
		t.Errorf("page 3 = %+v", page)
	}

	for _, target := range []string{"/api/datasets/legislators?page=4", "/api/datasets/legislators?page=abc", "/api/datasets/legislators?page=0", "/api/datasets/legislators?page=922337203685477580"} {
		if rec := get(t, h, target); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", target, rec.Code)
		}
	}
}

func TestListEmptyFirstPage(t *testing.T) {
	rec := get(t, newTestRouter(t, nil), "/api/datasets/bills?id=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	page := decode[Page[votes.Bill]](t, rec)
	if page.TotalCount != 0 || page.Items == nil {
		t.Errorf("page = %+v, want empty items", page)
	}
}

func TestListFilterAndSearch(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		target string
		want   []int64
	}{
		{"/api/datasets/bills?sponsor_id=17941", []int64{3568720}},
		{"/api/datasets/bills?search=Infrastructure", []int64{2900994}},
		{"/api/datasets/bills?search=2952375", []int64{2952375}},
		{"/api/datasets/bills?sponsor_id__in=17941,412211", []int64{2952375, 3568720}},
		{"/api/datasets/votes?bill_id=2952375", []int64{3321166}},
		{"/api/datasets/vote_results?legislator_id=412421&vote_type=2", []int64{12}},
	}

	for _, tt := range tests {
		rec := get(t, h, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d: %s", tt.target, rec.Code, rec.Body)
			continue
		}
		page := decode[Page[struct {
			ID int64 `json:"id"`
		}]](t, rec)

		var got []int64
		for _, item := range page.Items {
			got = append(got, item.ID)
		}
		if len(got) != len(tt.want) {
			t.Errorf("GET %s ids = %v, want %v", tt.target, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("GET %s ids = %v, want %v", tt.target, got, tt.want)
				break
			}
		}
	}
}

func TestListValidationError(t *testing.T) {
	rec := get(t, newTestRouter(t, nil), "/api/datasets/bills?sponsor_id=abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); body.Error == "" {
		t.Error("missing error message")
	}
}

func TestGetRecord(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/api/datasets/bills/2952375")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	bill := decode[votes.Bill](t, rec)
	if bill.Title != "H.R. 5376: Build Back Better Act" || bill.SponsorID != 412211 {
		t.Errorf("bill = %+v", bill)
	}

	if rec := get(t, h, "/api/datasets/bills/1"); rec.Code != http.StatusNotFound {
		t.Errorf("missing id status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/api/datasets/bills/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestLegislatorSummaries(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/api/summaries/legislators_votes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	page := decode[Page[votes.LegislatorVoteSummary]](t, rec)
	if page.TotalCount != 4 {
		t.Errorf("totalCount = %d, want 4", page.TotalCount)
	}

	rec = get(t, h, "/api/summaries/legislators_votes?search=Kinzinger")
	page = decode[Page[votes.LegislatorVoteSummary]](t, rec)
	if len(page.Items) != 1 || page.Items[0].SupportedBills != 2 || page.Items[0].OpposedBills != 1 {
		t.Errorf("search result = %+v", page.Items)
	}
}

func TestBillSummaries(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := get(t, h, "/api/summaries/bills_votes?supporters=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	page := decode[Page[votes.BillVoteSummary]](t, rec)
	if len(page.Items) != 1 || page.Items[0].BillID != 2952375 {
		t.Fatalf("items = %+v", page.Items)
	}
	if page.Items[0].SponsorName != "Rep. John Yarmuth (D-KY-3)" {
		t.Errorf("sponsor = %q", page.Items[0].SponsorName)
	}

	rec = get(t, h, "/api/summaries/bills_votes?search=Van%20Drew")
	page = decode[Page[votes.BillVoteSummary]](t, rec)
	if len(page.Items) != 1 || page.Items[0].BillID != 3568720 {
		t.Errorf("search result = %+v", page.Items)
	}
}

func TestSourceFailure(t *testing.T) {
	sources, err := votes.NewCSVSources(storage.Dir{Root: t.TempDir()}, testPaths)
	if err != nil {
		t.Fatal(err)
	}
	h := newTestRouter(t, func(cfg *RouterConfig) { cfg.Sources = sources })

	rec := get(t, h, "/api/summaries/bills_votes")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decode[ErrorResponse](t, rec); body.Error != "Internal server error" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) { cfg.RateLimitPerMinute = 1 })

	if rec := get(t, h, "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := get(t, h, "/api/health")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestSummaryRateLimit(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.RateLimitPerMinute = 10
		cfg.SummaryRateLimitPerMinute = 1
	})

	if rec := get(t, h, "/api/summaries/bills_votes"); rec.Code != http.StatusOK {
		t.Fatalf("first summary status = %d", rec.Code)
	}
	if rec := get(t, h, "/api/summaries/legislators_votes"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second summary status = %d, want 429", rec.Code)
	}
	// datasets only count against the global limit
	if rec := get(t, h, "/api/datasets/bills"); rec.Code != http.StatusOK {
		t.Errorf("dataset status = %d, want 200", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, func(cfg *RouterConfig) { cfg.CORSOrigins = []string{"https://watcher.example"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/datasets/bills", nil)
	req.Header.Set("Origin", "https://watcher.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://watcher.example" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q", got)
	}
}
