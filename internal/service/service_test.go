package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagemarkapp/pagemark-server/internal/catalog"
	"github.com/pagemarkapp/pagemark-server/internal/store"
	"github.com/pagemarkapp/pagemark-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "pagemark.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

// fakeCatalog is a canned catalog reader for projector tests.
type fakeCatalog struct {
	books []catalog.Book
	err   error
}

func (f *fakeCatalog) ListBooks(_ context.Context) ([]catalog.Book, error) {
	return f.books, f.err
}
