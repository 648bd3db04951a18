package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/felipediel/watcher/internal/filter"
	"github.com/felipediel/watcher/internal/repository"
)

// HealthChecker reports whether a backing service is usable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthFunc adapts a function to HealthChecker
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Health(ctx context.Context) error {
	return f(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// NewHealthHandler creates a health handler that checks each named service
func NewHealthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]string)
		status := "ok"

		for name, check := range checks {
			if err := check.Health(r.Context()); err != nil {
				slog.Error("Health check failed", "service", name, "error", err)
				services[name] = "unhealthy"
				status = "degraded"
			} else {
				services[name] = "healthy"
			}
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Services:  services,
		}

		if status != "ok" {
			respondJSON(w, http.StatusServiceUnavailable, response)
			return
		}
		respondJSON(w, http.StatusOK, response)
	}
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps err to a status code. Unexpected errors are logged and
// hidden from the client.
func respondError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	var ve *filter.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error()})
	case errors.Is(err, repository.ErrNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "Record not found"})
	case errors.Is(err, errInvalidPage):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("Request timed out", "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusGatewayTimeout, ErrorResponse{Error: "Request timed out"})
	default:
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
