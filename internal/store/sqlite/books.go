package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

// bookColumns is the ordered list of columns selected in projected book queries.
// Must match the scan order in scanProjectedBook.
const bookColumns = `id, document_name, title, sort, authors, projected_at`

// scanProjectedBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.ProjectedBook.
func scanProjectedBook(scanner interface{ Scan(dest ...any) error }) (*domain.ProjectedBook, error) {
	var (
		id           int64
		documentName string
		title        string
		sort         string
		authorsJSON  string
		projectedAt  string
	)

	err := scanner.Scan(&id, &documentName, &title, &sort, &authorsJSON, &projectedAt)
	if err != nil {
		return nil, err
	}

	return buildProjectedBook(id, documentName, title, sort, authorsJSON, projectedAt)
}

// buildProjectedBook assembles a domain.ProjectedBook from raw column values.
func buildProjectedBook(id int64, documentName, title, sort, authorsJSON, projectedAt string) (*domain.ProjectedBook, error) {
	b := &domain.ProjectedBook{
		ID:           id,
		DocumentName: documentName,
		Title:        title,
		Sort:         sort,
	}

	if err := json.Unmarshal([]byte(authorsJSON), &b.Authors); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}

	var err error
	b.ProjectedAt, err = parseTime(projectedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpsertProjectedBooks upserts projection rows in a single transaction.
// A failure anywhere rolls the whole batch back, so readers either see the
// previous projection or the new one, never a partial mix.
func (s *Store) UpsertProjectedBooks(ctx context.Context, books []*domain.ProjectedBook) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin projection: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO books (id, document_name, title, sort, authors, projected_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_name = excluded.document_name,
			title         = excluded.title,
			sort          = excluded.sort,
			authors       = excluded.authors,
			projected_at  = excluded.projected_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range books {
		authors := b.Authors
		if authors == nil {
			authors = []string{}
		}
		authorsJSON, err := json.Marshal(authors)
		if err != nil {
			return fmt.Errorf("encode authors for book %d: %w", b.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			b.ID,
			b.DocumentName,
			b.Title,
			b.Sort,
			string(authorsJSON),
			formatTime(b.ProjectedAt),
		); err != nil {
			return fmt.Errorf("upsert book %d: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// GetProjectedBookByName retrieves a projected book by document name.
// Returns store.ErrNotFound if no catalog book projects to that name.
func (s *Store) GetProjectedBookByName(ctx context.Context, documentName string) (*domain.ProjectedBook, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE document_name = ? ORDER BY id LIMIT 1`, documentName)

	b, err := scanProjectedBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CountProjectedBooks returns the number of projected rows.
func (s *Store) CountProjectedBooks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
