package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/lead-search/internal/engine"
	"github.com/jonathan/lead-search/internal/export"
	"github.com/jonathan/lead-search/internal/extraction"
	syncjob "github.com/jonathan/lead-search/internal/sync"
	"github.com/jonathan/lead-search/internal/types"
)

// Request defaults.
const (
	defaultMaxDocuments  = 100
	defaultMaxLeads      = 50
	defaultMinConfidence = 0.6
	defaultMaxFiles      = 10

	chatTemperature = 0.7
	chatMaxTokens   = 2048
)

// SyncRequest represents the request body for POST /sync. MaxDocuments is a
// pointer so an explicit 0 (scan nothing) is distinguishable from absent.
type SyncRequest struct {
	FolderID     string `json:"folderId,omitempty"`
	MaxDocuments *int   `json:"maxDocuments,omitempty"`
}

// SyncResponse represents the response for POST /sync
type SyncResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SearchRequest represents the request body for POST /leads/search
type SearchRequest struct {
	Query         string   `json:"query"`
	MaxLeads      int      `json:"maxLeads,omitempty"`
	MinConfidence *float64 `json:"minConfidence,omitempty"`
	MaxFiles      int      `json:"maxFiles,omitempty"`
}

// SearchMetadata describes one extraction run.
type SearchMetadata struct {
	TotalDocuments    int       `json:"totalDocuments"`
	AverageConfidence float64   `json:"averageConfidence"`
	ExtractedAt       time.Time `json:"extractedAt"`
}

// SearchResponse represents the response for POST /leads/search
type SearchResponse struct {
	Success  bool            `json:"success"`
	Leads    []types.Lead    `json:"leads"`
	Error    string          `json:"error,omitempty"`
	Metadata *SearchMetadata `json:"metadata,omitempty"`
}

// ExportRequest represents the request body for POST /leads/export
type ExportRequest struct {
	Leads  []types.Lead `json:"leads"`
	Format string       `json:"format,omitempty"`
}

// ChatRequest represents the request body for POST /chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse represents the response for POST /chat
type ChatResponse struct {
	Type    string       `json:"type"` // "leads" or "text"
	Message string       `json:"message"`
	Leads   []types.Lead `json:"leads,omitempty"`
}

// AnalyzeRequest represents the request body for POST /analyze-website
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// handleStartSync launches a background sync job and returns its ID.
func (s *Server) handleStartSync(w http.ResponseWriter, r *http.Request) {
	if s.syncMgr == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Document sync is not configured; set Google Drive credentials and a folder ID")
		return
	}

	// An empty body is allowed; everything falls back to defaults.
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	folderID := req.FolderID
	if folderID == "" {
		folderID = s.defaultFolderID
	}
	if folderID == "" {
		s.errorResponse(w, http.StatusBadRequest, "folderId is required")
		return
	}
	maxDocuments := defaultMaxDocuments
	if req.MaxDocuments != nil {
		maxDocuments = *req.MaxDocuments
	}

	jobID, err := s.syncMgr.StartSync(r.Context(), folderID, maxDocuments)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusAccepted, SyncResponse{
		JobID:   jobID,
		Status:  string(types.SyncScanning),
		Message: types.StatusMessage(types.SyncScanning),
	})
}

// handleListSyncJobs returns all sync jobs, most recent first.
func (s *Server) handleListSyncJobs(w http.ResponseWriter, r *http.Request) {
	if s.syncMgr == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": []types.SyncJob{}})
		return
	}

	jobs, err := s.syncMgr.ListJobs(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}
	if jobs == nil {
		jobs = []types.SyncJob{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// handleSyncStatus returns one job with a human-readable status message.
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if jobID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return
	}
	if s.syncMgr == nil {
		s.errorResponse(w, http.StatusNotFound, "Sync job not found: "+jobID)
		return
	}

	job, err := s.syncMgr.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, syncjob.ErrJobNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Sync job not found: "+jobID)
			return
		}
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job":     job,
		"message": types.StatusMessage(job.Status),
	})
}

// handleSearchLeads runs one extraction over the synced documents.
func (s *Server) handleSearchLeads(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.errorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := extraction.Options{
		MaxLeads:      req.MaxLeads,
		MinConfidence: defaultMinConfidence,
		MaxFiles:      req.MaxFiles,
	}
	if opts.MaxLeads <= 0 {
		opts.MaxLeads = defaultMaxLeads
	}
	if req.MinConfidence != nil {
		opts.MinConfidence = *req.MinConfidence
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = defaultMaxFiles
	}

	docs, err := s.engine.ListFiles(r.Context())
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), SearchResponse{
			Success: false,
			Leads:   []types.Lead{},
			Error:   userMessage(err),
		})
		return
	}

	result, err := s.extractor.ExtractLeads(r.Context(), docs, req.Query, opts)
	if err != nil {
		if errors.Is(err, extraction.ErrNoDocuments) {
			s.jsonResponse(w, http.StatusBadRequest, SearchResponse{
				Success: false,
				Leads:   []types.Lead{},
				Error:   "No documents available. Run a sync first to index documents.",
			})
			return
		}
		s.jsonResponse(w, HTTPStatus(err), SearchResponse{
			Success: false,
			Leads:   []types.Lead{},
			Error:   userMessage(err),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, SearchResponse{
		Success: true,
		Leads:   result.Leads,
		Metadata: &SearchMetadata{
			TotalDocuments:    len(docs),
			AverageConfidence: result.AverageConfidence,
			ExtractedAt:       time.Now(),
		},
	})
}

// handleExportLeads renders leads in the requested format as an attachment.
func (s *Server) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Leads) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "leads are required")
		return
	}

	format := export.Format(req.Format)
	if format == "" {
		format = export.FormatCSV
	}

	data, err := export.Render(req.Leads, format)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error("failed to write export", "error", err)
	}
}

// handleChat answers a free-form message. Lead-style questions run a full
// extraction; everything else goes straight to the model.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	if extraction.ContainsDriveLink(req.Message) {
		s.jsonResponse(w, http.StatusOK, ChatResponse{
			Type:    "text",
			Message: "It looks like you shared a Google Drive link. To index that folder, start a sync with POST /sync and the folder ID, then ask me about leads again.",
		})
		return
	}

	if extraction.IsLeadQuery(req.Message) {
		docs, err := s.engine.ListFiles(r.Context())
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), userMessage(err))
			return
		}
		result, err := s.extractor.ExtractLeads(r.Context(), docs, req.Message, extraction.Options{
			MaxLeads:      defaultMaxLeads,
			MinConfidence: defaultMinConfidence,
			MaxFiles:      defaultMaxFiles,
		})
		if err != nil {
			if errors.Is(err, extraction.ErrNoDocuments) {
				s.jsonResponse(w, http.StatusOK, ChatResponse{
					Type:    "text",
					Message: "I don't have any documents indexed yet. Run a sync first, then I can search them for leads.",
				})
				return
			}
			s.errorResponse(w, HTTPStatus(err), userMessage(err))
			return
		}
		s.jsonResponse(w, http.StatusOK, ChatResponse{
			Type:    "leads",
			Message: formatLeadsMessage(result),
			Leads:   result.Leads,
		})
		return
	}

	result, err := s.engine.Generate(r.Context(), req.Message, engine.Content{}, engine.GenerateOptions{
		Temperature:     chatTemperature,
		MaxOutputTokens: chatMaxTokens,
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}
	s.jsonResponse(w, http.StatusOK, ChatResponse{Type: "text", Message: result.Text})
}

// handleAnalyzeWebsite fetches a URL and returns the model's company analysis.
func (s *Server) handleAnalyzeWebsite(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		s.errorResponse(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), userMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"url":      req.URL,
		"analysis": analysis,
	})
}

// formatLeadsMessage renders an extraction result as chat text.
func formatLeadsMessage(result *extraction.Result) string {
	if len(result.Leads) == 0 {
		return "I searched the indexed documents but did not find any leads matching your question."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d lead(s) (average confidence %.2f):\n", len(result.Leads), result.AverageConfidence)
	for _, lead := range result.Leads {
		fmt.Fprintf(&b, "- %s", lead.Company.Name)
		if len(lead.Contacts) > 0 {
			contact := lead.Contacts[0]
			fmt.Fprintf(&b, " (%s", contact.Name)
			if contact.Email != "" {
				fmt.Fprintf(&b, ", %s", contact.Email)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
