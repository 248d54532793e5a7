package mcpserver

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Timestamp string `json:"timestamp"`
}

// ReadyChecker reports whether the pipeline has a loaded, answerable index.
// The engine implements this via its Ready() method.
type ReadyChecker interface {
	Ready() bool
}

// NewHealthHandler creates an HTTP handler for the /health endpoint. The
// process is healthy as soon as it can serve tools; the index field tells
// callers whether questions can be answered yet.
func NewHealthHandler(eng ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "healthy",
			Index:     "not_loaded",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if eng.Ready() {
			response.Index = "loaded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
