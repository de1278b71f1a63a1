package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	domainerrors "github.com/pagemarkapp/pagemark-server/internal/errors"
	"github.com/pagemarkapp/pagemark-server/internal/id"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

// SyncService reconciles incoming progress reports against stored documents.
type SyncService struct {
	store  store.Store
	logger *slog.Logger

	// now is the server clock, replaceable in tests.
	now func() time.Time
}

// NewSyncService creates a new sync service.
func NewSyncService(store store.Store, logger *slog.Logger) *SyncService {
	return &SyncService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ProgressReport contains one device's reading state for one document.
type ProgressReport struct {
	Document   string  `json:"document" validate:"required"`
	Progress   string  `json:"progress"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id"`
}

// ReportProgress applies a progress report for (user, document identity).
//
// A first report creates the document and links it to a projected book whose
// identity matches, when one exists; no match means the document stays
// unlinked forever (linkage happens only at creation time). A repeat report
// overwrites every mutable field unconditionally: last write wins, with no
// merge and no comparison of reading positions. The stored timestamp is
// always the server clock, never the device's.
func (s *SyncService) ReportProgress(ctx context.Context, userID string, report ProgressReport) (*domain.Document, error) {
	if err := validate.Struct(report); err != nil {
		return nil, formatValidationError(err)
	}

	now := s.now().UTC()

	doc, err := s.store.GetDocument(ctx, userID, report.Document)
	if err != nil && !domainerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get document: %w", err)
	}

	if doc == nil {
		doc, err = s.newDocument(ctx, userID, report.Document, now)
		if err != nil {
			return nil, err
		}
	}

	doc.ApplyReport(report.Progress, report.Percentage, report.Device, report.DeviceID, now)

	if err := s.store.UpsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	return doc, nil
}

// newDocument builds a fresh document for a first report, resolving the
// book link once.
func (s *SyncService) newDocument(ctx context.Context, userID, documentName string, now time.Time) (*domain.Document, error) {
	docID, err := id.Generate(id.PrefixDocument)
	if err != nil {
		return nil, fmt.Errorf("generate document ID: %w", err)
	}

	doc := &domain.Document{
		ID:           docID,
		UserID:       userID,
		DocumentName: documentName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	book, err := s.store.GetProjectedBookByName(ctx, documentName)
	switch {
	case err == nil:
		doc.BookID = &book.ID
	case domainerrors.Is(err, store.ErrNotFound):
		// Normal, permanent outcome: progress syncs without metadata.
	default:
		return nil, fmt.Errorf("resolve book: %w", err)
	}

	return doc, nil
}

// GetProgress returns the stored document for (user, document identity).
// A read never creates a record.
func (s *SyncService) GetProgress(ctx context.Context, userID, documentName string) (*domain.Document, error) {
	doc, err := s.store.GetDocument(ctx, userID, documentName)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("document progress not found")
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// ListBooks returns the user's documents that are linked to a projected
// book, joined with its metadata. Unlinked documents are invisible here.
func (s *SyncService) ListBooks(ctx context.Context, userID string) ([]*domain.DocumentWithBook, error) {
	items, err := s.store.ListLinkedDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list linked documents: %w", err)
	}
	return items, nil
}

// DeleteDocument removes one of the user's documents by row ID.
// Ownership mismatch and absence are the same NotFound to the caller.
func (s *SyncService) DeleteDocument(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	doc, err := s.store.DeleteDocument(ctx, userID, documentID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("document not found")
		}
		return nil, fmt.Errorf("delete document: %w", err)
	}

	s.logger.Info("Document deleted", "user_id", userID, "document_id", documentID)

	return doc, nil
}
