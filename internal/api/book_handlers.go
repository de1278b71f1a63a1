package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/http/response"
)

// bookMetadata is the projected catalog metadata attached to a listing item.
type bookMetadata struct {
	Title   string   `json:"title"`
	Sort    string   `json:"sort"`
	Authors []string `json:"authors"`
}

// bookListItem is one linked document in the per-user library listing.
// ID is the catalog book key; DocumentID is the progress row, which is what
// the delete endpoint takes.
type bookListItem struct {
	ID           int64        `json:"id"`
	DocumentID   string       `json:"document_id"`
	DocumentName string       `json:"document_name"`
	Progress     string       `json:"progress"`
	Percentage   float64      `json:"percentage"`
	Device       string       `json:"device"`
	DeviceID     string       `json:"device_id"`
	Timestamp    int64        `json:"timestamp"`
	Metadata     bookMetadata `json:"metadata"`
}

func newBookListItem(item *domain.DocumentWithBook) bookListItem {
	return bookListItem{
		ID:           item.Book.ID,
		DocumentID:   item.ID,
		DocumentName: item.DocumentName,
		Progress:     item.Progress,
		Percentage:   item.Percentage,
		Device:       item.Device,
		DeviceID:     item.DeviceID,
		Timestamp:    item.Timestamp,
		Metadata: bookMetadata{
			Title:   item.Book.Title,
			Sort:    item.Book.Sort,
			Authors: item.Book.Authors,
		},
	}
}

// handleListBooks returns the user's linked documents with catalog metadata.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	items, err := s.syncService.ListBooks(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	books := make([]bookListItem, 0, len(items))
	for _, item := range items {
		books = append(books, newBookListItem(item))
	}

	response.Success(w, books, s.logger)
}

// handleDeleteDocument removes one of the user's progress rows.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	documentID := chi.URLParam(r, "documentID")

	doc, err := s.syncService.DeleteDocument(r.Context(), userID, documentID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"document": doc.DocumentName}, s.logger)
}
