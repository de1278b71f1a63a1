// Package identity derives stable document identifiers from catalog metadata.
//
// KOReader clients identify a book by the MD5 digest of its filename, so the
// server must derive the exact same identifier from catalog metadata to link
// synced progress back to a catalog book.
package identity

import (
	"crypto/md5" //#nosec G501 -- identity digest, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
)

// UnknownAuthor is the fallback author name for catalog books with no linked author.
const UnknownAuthor = "Unknown"

// Resolve computes the document identifier for a book.
// The identifier is the hex MD5 digest of "{author} - {title}.{format}",
// matching the filename convention used by reading devices. The format
// extension is lower-cased; title and author participate verbatim.
func Resolve(title, author, format string) string {
	name := fmt.Sprintf("%s - %s.%s", author, title, strings.ToLower(format))
	sum := md5.Sum([]byte(name)) //#nosec G401
	return hex.EncodeToString(sum[:])
}
