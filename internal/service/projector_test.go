package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemarkapp/pagemark-server/internal/catalog"
	"github.com/pagemarkapp/pagemark-server/internal/identity"
)

func TestProject(t *testing.T) {
	st := newTestStore(t)
	reader := &fakeCatalog{books: []catalog.Book{
		{ID: 1, Title: "Dune", Sort: "Dune", Formats: []string{"EPUB"}, Authors: []string{"Frank Herbert"}},
		{ID: 2, Title: "Hyperion", Sort: "Hyperion", Formats: []string{"MOBI", "EPUB"}, Authors: []string{"Dan Simmons"}},
	}}
	svc := NewProjectorService(reader, st, testLogger())
	ctx := context.Background()

	result, err := svc.Project(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Projected)
	assert.Equal(t, 0, result.Skipped)

	book, err := st.GetProjectedBookByName(ctx, identity.Resolve("Dune", "Frank Herbert", "EPUB"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, book.Authors)

	// The first format entry decides the identity.
	_, err = st.GetProjectedBookByName(ctx, identity.Resolve("Hyperion", "Dan Simmons", "MOBI"))
	assert.NoError(t, err)
}

func TestProjectSkipsFormatlessBooks(t *testing.T) {
	st := newTestStore(t)
	reader := &fakeCatalog{books: []catalog.Book{
		{ID: 1, Title: "Draft", Sort: "Draft", Authors: []string{"Someone"}},
		{ID: 2, Title: "Dune", Sort: "Dune", Formats: []string{"EPUB"}, Authors: []string{"Frank Herbert"}},
	}}
	svc := NewProjectorService(reader, st, testLogger())

	result, err := svc.Project(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Projected)
	assert.Equal(t, 1, result.Skipped)

	count, err := st.CountProjectedBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProjectAuthorlessBookUsesUnknown(t *testing.T) {
	st := newTestStore(t)
	reader := &fakeCatalog{books: []catalog.Book{
		{ID: 1, Title: "Anonymous Work", Sort: "Anonymous Work", Formats: []string{"PDF"}},
	}}
	svc := NewProjectorService(reader, st, testLogger())

	_, err := svc.Project(context.Background())
	require.NoError(t, err)

	name := identity.Resolve("Anonymous Work", identity.UnknownAuthor, "PDF")
	book, err := st.GetProjectedBookByName(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
}

func TestProjectIdempotent(t *testing.T) {
	st := newTestStore(t)
	reader := &fakeCatalog{books: []catalog.Book{
		{ID: 1, Title: "Dune", Sort: "Dune", Formats: []string{"EPUB"}, Authors: []string{"Frank Herbert"}},
	}}
	svc := NewProjectorService(reader, st, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Project(ctx)
		require.NoError(t, err)
	}

	count, err := st.CountProjectedBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProjectFollowsCatalogEdits(t *testing.T) {
	st := newTestStore(t)
	reader := &fakeCatalog{books: []catalog.Book{
		{ID: 1, Title: "Dune", Sort: "Dune", Formats: []string{"EPUB"}, Authors: []string{"F. Herbert"}},
	}}
	svc := NewProjectorService(reader, st, testLogger())
	ctx := context.Background()

	_, err := svc.Project(ctx)
	require.NoError(t, err)
	oldName := identity.Resolve("Dune", "F. Herbert", "EPUB")

	// Fixing the author name changes the derived identity for the same row.
	reader.books[0].Authors = []string{"Frank Herbert"}
	_, err = svc.Project(ctx)
	require.NoError(t, err)

	_, err = st.GetProjectedBookByName(ctx, oldName)
	assert.Error(t, err)

	book, err := st.GetProjectedBookByName(ctx, identity.Resolve("Dune", "Frank Herbert", "EPUB"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.ID)
}

func TestProjectCatalogError(t *testing.T) {
	st := newTestStore(t)
	reader := &fakeCatalog{err: errors.New("catalog unavailable")}
	svc := NewProjectorService(reader, st, testLogger())

	_, err := svc.Project(context.Background())
	assert.Error(t, err)
}
