package domain

import (
	"testing"
	"time"
)

func TestApplyReport_OverwritesAllFields(t *testing.T) {
	doc := &Document{
		ID:           "doc-1",
		UserID:       "usr-1",
		DocumentName: "abc123",
		Progress:     "/body/DocFragment[20]",
		Percentage:   0.80,
		Device:       "kobo",
		DeviceID:     "dev-a",
		Timestamp:    1000,
	}

	now := time.Unix(2000, 0)
	doc.ApplyReport("/body/DocFragment[5]", 0.25, "boox", "dev-b", now)

	// Last write wins even when it reports less progress.
	if doc.Progress != "/body/DocFragment[5]" {
		t.Errorf("Progress: got %q", doc.Progress)
	}
	if doc.Percentage != 0.25 {
		t.Errorf("Percentage: got %v", doc.Percentage)
	}
	if doc.Device != "boox" {
		t.Errorf("Device: got %q", doc.Device)
	}
	if doc.DeviceID != "dev-b" {
		t.Errorf("DeviceID: got %q", doc.DeviceID)
	}
	if doc.Timestamp != 2000 {
		t.Errorf("Timestamp: got %d", doc.Timestamp)
	}
}

func TestApplyReport_KeepsIdentity(t *testing.T) {
	doc := &Document{ID: "doc-1", UserID: "usr-1", DocumentName: "abc123"}
	doc.ApplyReport("p", 0.5, "d", "id", time.Now())

	if doc.ID != "doc-1" || doc.UserID != "usr-1" || doc.DocumentName != "abc123" {
		t.Error("identity fields must not change on report")
	}
}
