package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/http/response"
	"github.com/pagemarkapp/pagemark-server/internal/service"
)

// progressResponse is the wire shape of a stored progress record.
type progressResponse struct {
	Document   string  `json:"document"`
	Progress   string  `json:"progress"`
	Percentage float64 `json:"percentage"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id"`
	Timestamp  int64   `json:"timestamp"`
}

func newProgressResponse(doc *domain.Document) progressResponse {
	return progressResponse{
		Document:   doc.DocumentName,
		Progress:   doc.Progress,
		Percentage: doc.Percentage,
		Device:     doc.Device,
		DeviceID:   doc.DeviceID,
		Timestamp:  doc.Timestamp,
	}
}

// handleGetProgress returns the stored progress for one document identity.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	document := chi.URLParam(r, "document")

	doc, err := s.syncService.GetProgress(r.Context(), userID, document)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, newProgressResponse(doc), s.logger)
}

// handleUpdateProgress applies a progress report and returns the document
// identity with the server-assigned timestamp.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	var report service.ProgressReport
	if err := json.UnmarshalRead(r.Body, &report); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	doc, err := s.syncService.ReportProgress(r.Context(), userID, report)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"document":  doc.DocumentName,
		"timestamp": doc.Timestamp,
	}, s.logger)
}
