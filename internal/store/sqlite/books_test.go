package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

func projectedBook(id int64, name, title string, authors ...string) *domain.ProjectedBook {
	return &domain.ProjectedBook{
		ID:           id,
		DocumentName: name,
		Title:        title,
		Sort:         title,
		Authors:      authors,
		ProjectedAt:  time.Now().UTC(),
	}
}

func TestUpsertProjectedBooks_InsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	books := []*domain.ProjectedBook{
		projectedBook(7, "hash-dune", "Dune", "Herbert"),
		projectedBook(8, "hash-found", "Foundation", "Asimov"),
	}
	if err := s.UpsertProjectedBooks(ctx, books); err != nil {
		t.Fatalf("UpsertProjectedBooks: %v", err)
	}

	got, err := s.GetProjectedBookByName(ctx, "hash-dune")
	if err != nil {
		t.Fatalf("GetProjectedBookByName: %v", err)
	}
	if got.ID != 7 {
		t.Errorf("ID: got %d, want 7", got.ID)
	}
	if got.Title != "Dune" {
		t.Errorf("Title: got %q", got.Title)
	}
	if !reflect.DeepEqual(got.Authors, []string{"Herbert"}) {
		t.Errorf("Authors: got %v", got.Authors)
	}

	count, err := s.CountProjectedBooks(ctx)
	if err != nil {
		t.Fatalf("CountProjectedBooks: %v", err)
	}
	if count != 2 {
		t.Errorf("count: got %d, want 2", count)
	}
}

func TestUpsertProjectedBooks_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	books := []*domain.ProjectedBook{projectedBook(7, "hash-dune", "Dune", "Herbert")}

	if err := s.UpsertProjectedBooks(ctx, books); err != nil {
		t.Fatalf("first projection: %v", err)
	}
	if err := s.UpsertProjectedBooks(ctx, books); err != nil {
		t.Fatalf("second projection: %v", err)
	}

	count, err := s.CountProjectedBooks(ctx)
	if err != nil {
		t.Fatalf("CountProjectedBooks: %v", err)
	}
	if count != 1 {
		t.Errorf("re-projection must not create rows: got %d", count)
	}
}

func TestUpsertProjectedBooks_OverwritesStaleIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertProjectedBooks(ctx, []*domain.ProjectedBook{
		projectedBook(7, "hash-old", "Dune", "Herbert"),
	}); err != nil {
		t.Fatalf("first projection: %v", err)
	}

	// Catalog metadata changed; the derived identity changes with it.
	if err := s.UpsertProjectedBooks(ctx, []*domain.ProjectedBook{
		projectedBook(7, "hash-new", "Dune (Revised)", "Herbert"),
	}); err != nil {
		t.Fatalf("second projection: %v", err)
	}

	if _, err := s.GetProjectedBookByName(ctx, "hash-old"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stale identity should be gone, got %v", err)
	}

	got, err := s.GetProjectedBookByName(ctx, "hash-new")
	if err != nil {
		t.Fatalf("GetProjectedBookByName: %v", err)
	}
	if got.Title != "Dune (Revised)" {
		t.Errorf("Title: got %q", got.Title)
	}
}

func TestUpsertProjectedBooks_EmptyBatch(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertProjectedBooks(context.Background(), nil); err != nil {
		t.Fatalf("empty batch should commit cleanly: %v", err)
	}
}

func TestGetProjectedBookByName_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProjectedBookByName(context.Background(), "zzz-unknown-hash")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectedBook_NilAuthorsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := projectedBook(9, "hash-anon", "Anonymous Work")
	b.Authors = nil
	if err := s.UpsertProjectedBooks(ctx, []*domain.ProjectedBook{b}); err != nil {
		t.Fatalf("UpsertProjectedBooks: %v", err)
	}

	got, err := s.GetProjectedBookByName(ctx, "hash-anon")
	if err != nil {
		t.Fatalf("GetProjectedBookByName: %v", err)
	}
	if len(got.Authors) != 0 {
		t.Errorf("Authors: got %v, want empty", got.Authors)
	}
}
