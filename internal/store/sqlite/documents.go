package sqlite

import (
	"context"
	"database/sql"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
	"github.com/pagemarkapp/pagemark-server/internal/store"
)

// documentColumns is the ordered list of columns selected in document queries.
// Must match the scan order in scanDocument.
const documentColumns = `id, user_id, document_name, progress, percentage,
	device, device_id, timestamp, book_id, created_at, updated_at`

// scanDocument scans a sql.Row (or sql.Rows via its Scan method) into a domain.Document.
func scanDocument(scanner interface{ Scan(dest ...any) error }) (*domain.Document, error) {
	var d domain.Document

	var (
		bookID    sql.NullInt64
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&d.ID,
		&d.UserID,
		&d.DocumentName,
		&d.Progress,
		&d.Percentage,
		&d.Device,
		&d.DeviceID,
		&d.Timestamp,
		&bookID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bookID.Valid {
		d.BookID = &bookID.Int64
	}

	d.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// UpsertDocument inserts a document, or on (user_id, document_name) conflict
// overwrites only the mutable progress fields. The single statement makes a
// concurrent report for the same pair resolve to whichever commit lands last,
// without ever producing a duplicate row.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, user_id, document_name, progress, percentage,
			device, device_id, timestamp, book_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, document_name) DO UPDATE SET
			progress   = excluded.progress,
			percentage = excluded.percentage,
			device     = excluded.device,
			device_id  = excluded.device_id,
			timestamp  = excluded.timestamp,
			updated_at = excluded.updated_at`,
		doc.ID,
		doc.UserID,
		doc.DocumentName,
		doc.Progress,
		doc.Percentage,
		doc.Device,
		doc.DeviceID,
		doc.Timestamp,
		nullInt64Ptr(doc.BookID),
		formatTime(doc.CreatedAt),
		formatTime(doc.UpdatedAt),
	)
	return err
}

// GetDocument retrieves a user's document by document name.
// Returns store.ErrNotFound if no record exists for the pair.
func (s *Store) GetDocument(ctx context.Context, userID, documentName string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = ? AND document_name = ?`,
		userID, documentName)

	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDocument deletes a document only if it belongs to the user and
// returns the deleted record. Ownership mismatch and absence both return
// store.ErrNotFound so callers cannot probe other users' documents.
func (s *Store) DeleteDocument(ctx context.Context, userID, documentID string) (*domain.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND user_id = ?`,
		documentID, userID)

	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND user_id = ?`, documentID, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return d, nil
}

// ListLinkedDocuments returns the user's documents that have a projected
// book link, joined with the book metadata, ordered by last report time
// descending. Unlinked documents are excluded.
func (s *Store) ListLinkedDocuments(ctx context.Context, userID string) ([]*domain.DocumentWithBook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.user_id, d.document_name, d.progress, d.percentage,
			d.device, d.device_id, d.timestamp, d.book_id, d.created_at, d.updated_at,
			b.id, b.document_name, b.title, b.sort, b.authors, b.projected_at
		FROM documents d
		JOIN books b ON b.id = d.book_id
		WHERE d.user_id = ?
		ORDER BY d.timestamp DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DocumentWithBook
	for rows.Next() {
		item, err := scanDocumentWithBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanDocumentWithBook scans a joined document+book row.
func scanDocumentWithBook(rows *sql.Rows) (*domain.DocumentWithBook, error) {
	var item domain.DocumentWithBook

	var (
		bookID      sql.NullInt64
		createdAt   string
		updatedAt   string
		joinedID    int64
		joinedName  string
		title       string
		sort        string
		authorsJSON string
		projectedAt string
	)

	err := rows.Scan(
		&item.ID,
		&item.UserID,
		&item.DocumentName,
		&item.Progress,
		&item.Percentage,
		&item.Device,
		&item.DeviceID,
		&item.Timestamp,
		&bookID,
		&createdAt,
		&updatedAt,
		&joinedID,
		&joinedName,
		&title,
		&sort,
		&authorsJSON,
		&projectedAt,
	)
	if err != nil {
		return nil, err
	}

	if bookID.Valid {
		item.BookID = &bookID.Int64
	}

	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	item.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	book, err := buildProjectedBook(joinedID, joinedName, title, sort, authorsJSON, projectedAt)
	if err != nil {
		return nil, err
	}
	item.Book = book

	return &item, nil
}
