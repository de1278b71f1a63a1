package domain

import "time"

// ProjectedBook is a book-identity row republished from the external catalog
// into the sync store. It is keyed by the catalog's own integer book id.
//
// DocumentName is a pure function of the catalog record's current title,
// first author, and first format, so re-projecting an unchanged catalog is
// a no-op and re-projecting a changed one overwrites any stale value.
type ProjectedBook struct {
	ID           int64     `json:"id"`
	DocumentName string    `json:"document_name"`
	Title        string    `json:"title"`
	Sort         string    `json:"sort"`
	Authors      []string  `json:"authors"` // catalog link order
	ProjectedAt  time.Time `json:"-"`
}
