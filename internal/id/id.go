// Package id generates prefixed unique identifiers for stored records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used by the sync store.
const (
	PrefixUser     = "usr"
	PrefixDocument = "doc"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "doc-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and compact, which matters because document IDs
// travel in KOReader request paths.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where failure should crash the program, such as initialization.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
