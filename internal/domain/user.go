package domain

import "time"

// User represents a registered sync account.
//
// The credential is an opaque key supplied by the reading device (KOReader
// sends a digest of the password, never the plaintext). Only an Argon2id
// hash of that key is stored.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	KeyHash   string    `json:"-"` // Stored hashed, never serialized
	CreatedAt time.Time `json:"created_at"`
}
