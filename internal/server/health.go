// health.go - Liveness, readiness, and component health endpoints.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type componentHealth struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
}

type health struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]componentHealth `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{
		Status:     "healthy",
		Timestamp:  time.Now(),
		Version:    s.build.Version,
		Components: map[string]componentHealth{},
	}

	h.Components["database"] = s.checkDatabase(r.Context())
	h.Components["object_store"] = s.checkObjectStore()

	statusCode := http.StatusOK
	for _, c := range h.Components {
		if c.Status == "down" {
			h.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(h)
}

func (s *Server) checkDatabase(ctx context.Context) componentHealth {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return componentHealth{Status: "down", Message: "database ping failed: " + err.Error()}
	}
	return componentHealth{
		Status:    "up",
		LatencyMs: float64(time.Since(start).Milliseconds()),
	}
}

func (s *Server) checkObjectStore() componentHealth {
	if s.objects == nil {
		return componentHealth{Status: "down", Message: "object store not configured"}
	}
	return componentHealth{Status: "up"}
}

// handleReady is a readiness probe: can we query the database?
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		http.Error(w, `{"status":"not_ready","message":"database unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleLive is a liveness probe: is the process running?
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}
