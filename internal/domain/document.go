package domain

import "time"

// Document is one user's reading state for one document identity.
// At most one Document exists per (user, document name) pair.
type Document struct {
	ID           string  `json:"id"`
	UserID       string  `json:"-"`
	DocumentName string  `json:"document"`
	Progress     string  `json:"progress"`
	Percentage   float64 `json:"percentage"`
	Device       string  `json:"device"`
	DeviceID     string  `json:"device_id"`
	// Timestamp is the server-assigned Unix time of the last report.
	Timestamp int64 `json:"timestamp"`
	// BookID links to a ProjectedBook, nil when the document name matched
	// nothing at creation time. Absence is a normal, permanent state.
	BookID    *int64    `json:"book_id,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ApplyReport overwrites every mutable progress field with the report's
// values and stamps the given time. Resolution is last-write-wins: a later
// report from any device fully replaces the stored state, even when it
// represents less reading progress.
func (d *Document) ApplyReport(progress string, percentage float64, device, deviceID string, now time.Time) {
	d.Progress = progress
	d.Percentage = percentage
	d.Device = device
	d.DeviceID = deviceID
	d.Timestamp = now.Unix()
	d.UpdatedAt = now.UTC()
}

// DocumentWithBook joins a Document with its projected book metadata for
// per-user library listings. Only linked documents appear in these listings.
type DocumentWithBook struct {
	Document
	Book *ProjectedBook `json:"metadata,omitempty"`
}
