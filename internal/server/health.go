package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/lead-search/internal/engine"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecks reports which subsystems are configured and reachable.
type HealthChecks struct {
	APIKeyConfigured bool `json:"apiKeyConfigured"`
	DriveConfigured  bool `json:"driveConfigured"`
	EngineReachable  bool `json:"engineReachable"`
}

// HealthResponse represents the response for GET /health
type HealthResponse struct {
	Status    string         `json:"status"` // healthy, warning, degraded
	Timestamp time.Time      `json:"timestamp"`
	Checks    HealthChecks   `json:"checks"`
	Files     map[string]int `json:"files"` // document counts by state
	Issues    []string       `json:"issues"`
}

// handleHealth reports service health: configuration checks, engine
// connectivity, and indexed document counts by state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Timestamp: time.Now(),
		Checks: HealthChecks{
			APIKeyConfigured: s.engine != nil,
			DriveConfigured:  s.driveConfigured,
		},
		Files:  map[string]int{},
		Issues: []string{},
	}

	if s.engine != nil {
		docs, err := s.engine.ListFiles(ctx)
		if err != nil {
			resp.Issues = append(resp.Issues, "extraction engine unreachable: "+userMessage(err))
		} else {
			resp.Checks.EngineReachable = true
			for _, doc := range docs {
				resp.Files[string(doc.State)]++
			}
		}
	} else {
		resp.Issues = append(resp.Issues, "GEMINI_API_KEY is not configured")
	}

	if !s.driveConfigured {
		resp.Issues = append(resp.Issues, "Google Drive is not configured; document sync is disabled")
	}
	if failed := resp.Files[string(engine.StateFailed)]; failed > 0 {
		resp.Issues = append(resp.Issues, "some documents failed to index")
	}

	switch {
	case !resp.Checks.APIKeyConfigured || !resp.Checks.EngineReachable:
		resp.Status = "degraded"
	case len(resp.Issues) > 0:
		resp.Status = "warning"
	default:
		resp.Status = "healthy"
	}

	s.jsonResponse(w, http.StatusOK, resp)
}
