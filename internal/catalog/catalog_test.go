package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// newFixtureCatalog creates a minimal Calibre-shaped database on disk and
// returns its path.
func newFixtureCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	schema := `
		CREATE TABLE books (id INTEGER PRIMARY KEY, title TEXT NOT NULL, sort TEXT);
		CREATE TABLE data (id INTEGER PRIMARY KEY, book INTEGER NOT NULL, format TEXT NOT NULL);
		CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		CREATE TABLE books_authors_link (id INTEGER PRIMARY KEY, book INTEGER NOT NULL, author INTEGER NOT NULL);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return path
}

func seedBook(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func openTestCatalog(t *testing.T, path string) *SQLiteCatalog {
	t.Helper()
	c, err := Open(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestListBooks_OrderedFormatsAndAuthors(t *testing.T) {
	path := newFixtureCatalog(t)
	seedBook(t, path,
		`INSERT INTO books (id, title, sort) VALUES (7, 'Dune', 'Dune')`,
		`INSERT INTO data (id, book, format) VALUES (1, 7, 'EPUB'), (2, 7, 'MOBI')`,
		`INSERT INTO authors (id, name) VALUES (1, 'Herbert'), (2, 'Anderson')`,
		`INSERT INTO books_authors_link (id, book, author) VALUES (1, 7, 1), (2, 7, 2)`,
	)

	c := openTestCatalog(t, path)
	books, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)

	b := books[0]
	assert.Equal(t, int64(7), b.ID)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, []string{"EPUB", "MOBI"}, b.Formats)
	assert.Equal(t, []string{"Herbert", "Anderson"}, b.Authors)
	assert.Equal(t, "Herbert", b.PrimaryAuthor())
	assert.Equal(t, "EPUB", b.PrimaryFormat())
}

func TestListBooks_NoFormatsNoAuthors(t *testing.T) {
	path := newFixtureCatalog(t)
	seedBook(t, path,
		`INSERT INTO books (id, title, sort) VALUES (1, 'Orphan', 'Orphan')`,
	)

	c := openTestCatalog(t, path)
	books, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Empty(t, books[0].Formats)
	assert.Empty(t, books[0].Authors)
	assert.Equal(t, "", books[0].PrimaryAuthor())
	assert.Equal(t, "", books[0].PrimaryFormat())
}

func TestOpen_ReadOnly(t *testing.T) {
	path := newFixtureCatalog(t)
	c := openTestCatalog(t, path)

	_, err := c.db.Exec(`INSERT INTO books (id, title) VALUES (99, 'Nope')`)
	assert.Error(t, err, "catalog connection must be read-only")
}

func TestListBooks_EmptyCatalog(t *testing.T) {
	path := newFixtureCatalog(t)
	c := openTestCatalog(t, path)

	books, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}
