// Package store defines the sync store contract and its error values.
// The SQLite implementation lives in the sqlite subpackage; services depend
// on this interface so tests can substitute store doubles.
package store

import (
	"context"

	"github.com/pagemarkapp/pagemark-server/internal/domain"
)

// Store is the persistence contract for users, documents, and projected books.
type Store interface {
	// CreateUser inserts a new user.
	// Returns ErrUsernameExists if the username is taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByUsername retrieves a user by exact username match.
	// Returns ErrNotFound if the user does not exist.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpsertDocument inserts a document, or on (user_id, document_name)
	// conflict overwrites the mutable progress fields atomically.
	// The stored identity (id, book link, created_at) is never changed by
	// the conflict path.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a user's document by document name.
	// Returns ErrNotFound if no record exists for the pair.
	GetDocument(ctx context.Context, userID, documentName string) (*domain.Document, error)

	// DeleteDocument deletes a document only if it belongs to the user.
	// Ownership mismatch and absence both return ErrNotFound.
	DeleteDocument(ctx context.Context, userID, documentID string) (*domain.Document, error)

	// ListLinkedDocuments returns the user's documents that have a book
	// link, joined with projected metadata. Unlinked documents are excluded.
	ListLinkedDocuments(ctx context.Context, userID string) ([]*domain.DocumentWithBook, error)

	// UpsertProjectedBooks upserts the given projection rows in a single
	// transaction so a failed run leaves the previous projection intact.
	UpsertProjectedBooks(ctx context.Context, books []*domain.ProjectedBook) error

	// GetProjectedBookByName retrieves a projected book by document name.
	// Returns ErrNotFound if no catalog book projects to that name.
	GetProjectedBookByName(ctx context.Context, documentName string) (*domain.ProjectedBook, error)

	// CountProjectedBooks returns the number of projected rows.
	CountProjectedBooks(ctx context.Context) (int64, error)

	// Close releases the underlying database.
	Close() error
}
