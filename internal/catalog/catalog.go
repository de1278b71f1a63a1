// Package catalog provides read-only access to an external Calibre-style
// library database.
//
// The catalog is maintained by other software; this package never writes to
// it and never participates in a transaction with the sync store. A snapshot
// of books, format entries, and author links is read in one pass, so a
// catalog mutation mid-read may be missed but can never corrupt sync state.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Book is one catalog record with its ordered format and author entries.
type Book struct {
	ID      int64
	Title   string
	Sort    string
	Formats []string // ordered by the catalog's data table
	Authors []string // ordered by the catalog's author-link table
}

// PrimaryAuthor returns the first linked author, or empty when none exist.
func (b Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// PrimaryFormat returns the first format entry, or empty when none exist.
func (b Book) PrimaryFormat() string {
	if len(b.Formats) == 0 {
		return ""
	}
	return b.Formats[0]
}

// Reader is the read-only catalog interface consumed by the projector.
type Reader interface {
	// ListBooks returns a snapshot of every catalog book.
	ListBooks(ctx context.Context) ([]Book, error)
}

// SQLiteCatalog reads a Calibre metadata.db opened read-only.
type SQLiteCatalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the catalog database at the given path in read-only mode.
func Open(path string, logger *slog.Logger) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	// Catalog reads are bursty (one scan per projection), keep the pool small.
	db.SetMaxOpenConns(2)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec pragma: %w", err)
	}

	return &SQLiteCatalog{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

// ListBooks returns every catalog book with its format entries ordered by
// the data table's id and its authors ordered by the author-link table's id.
func (c *SQLiteCatalog) ListBooks(ctx context.Context) ([]Book, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin catalog read: %w", err)
	}
	defer tx.Rollback()

	books, order, err := readBooks(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := readFormats(ctx, tx, books); err != nil {
		return nil, err
	}
	if err := readAuthors(ctx, tx, books); err != nil {
		return nil, err
	}

	result := make([]Book, 0, len(order))
	for _, id := range order {
		result = append(result, *books[id])
	}
	return result, nil
}

func readBooks(ctx context.Context, tx *sql.Tx) (map[int64]*Book, []int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, title, sort FROM books ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make(map[int64]*Book)
	var order []int64
	for rows.Next() {
		var b Book
		var sort sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &sort); err != nil {
			return nil, nil, err
		}
		b.Sort = sort.String
		books[b.ID] = &b
		order = append(order, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return books, order, nil
}

func readFormats(ctx context.Context, tx *sql.Tx, books map[int64]*Book) error {
	rows, err := tx.QueryContext(ctx, `SELECT book, format FROM data ORDER BY book, id`)
	if err != nil {
		return fmt.Errorf("query formats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int64
		var format string
		if err := rows.Scan(&bookID, &format); err != nil {
			return err
		}
		if b, ok := books[bookID]; ok {
			b.Formats = append(b.Formats, format)
		}
	}
	return rows.Err()
}

func readAuthors(ctx context.Context, tx *sql.Tx, books map[int64]*Book) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT l.book, a.name
		FROM books_authors_link l
		JOIN authors a ON a.id = l.author
		ORDER BY l.book, l.id`)
	if err != nil {
		return fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID int64
		var name string
		if err := rows.Scan(&bookID, &name); err != nil {
			return err
		}
		if b, ok := books[bookID]; ok {
			b.Authors = append(b.Authors, name)
		}
	}
	return rows.Err()
}
