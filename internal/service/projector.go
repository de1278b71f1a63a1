package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagemarkapp/pagemark-server/internal/catalog"
	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/identity"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

// ProjectorService republishes derived book identities from the external
// catalog into the sync store.
type ProjectorService struct {
	catalog catalog.Reader
	store   store.Store
	logger  *slog.Logger
}

// NewProjectorService creates a new projector service.
func NewProjectorService(catalog catalog.Reader, store store.Store, logger *slog.Logger) *ProjectorService {
	return &ProjectorService{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}
}

// ProjectionResult summarizes one projection run.
type ProjectionResult struct {
	Projected int `json:"projected"`
	Skipped   int `json:"skipped"`
}

// Project reads the full catalog snapshot, derives a document identity for
// every book with at least one format entry, and upserts the rows in a
// single sync-store transaction. Books without format entries have no
// derivable identity and are skipped, not errored. Running twice against an
// unchanged catalog yields no net row changes.
func (s *ProjectorService) Project(ctx context.Context) (*ProjectionResult, error) {
	started := time.Now()

	// Snapshot first: the catalog never participates in a transaction with
	// the sync store, so a catalog write mid-run may be missed but cannot
	// corrupt sync state.
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog books: %w", err)
	}

	result := &ProjectionResult{}
	now := time.Now().UTC()
	rows := make([]*domain.ProjectedBook, 0, len(books))
	for _, b := range books {
		format := b.PrimaryFormat()
		if format == "" {
			result.Skipped++
			continue
		}

		author := b.PrimaryAuthor()
		if author == "" {
			author = identity.UnknownAuthor
		}

		rows = append(rows, &domain.ProjectedBook{
			ID:           b.ID,
			DocumentName: identity.Resolve(b.Title, author, format),
			Title:        b.Title,
			Sort:         b.Sort,
			Authors:      b.Authors,
			ProjectedAt:  now,
		})
	}

	if err := s.store.UpsertProjectedBooks(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace projected books: %w", err)
	}
	result.Projected = len(rows)

	s.logger.Info("Catalog projected",
		"projected", result.Projected,
		"skipped", result.Skipped,
		"duration", time.Since(started),
	)

	return result, nil
}
