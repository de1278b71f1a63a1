package identity

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Deterministic(t *testing.T) {
	a := Resolve("Dune", "Herbert", "epub")
	b := Resolve("Dune", "Herbert", "epub")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestResolve_MatchesFilenameDigest(t *testing.T) {
	sum := md5.Sum([]byte("Herbert - Dune.epub"))
	assert.Equal(t, hex.EncodeToString(sum[:]), Resolve("Dune", "Herbert", "epub"))
}

func TestResolve_LowercasesFormat(t *testing.T) {
	assert.Equal(t, Resolve("Dune", "Herbert", "epub"), Resolve("Dune", "Herbert", "EPUB"))
}

func TestResolve_InputSensitivity(t *testing.T) {
	base := Resolve("Dune", "Herbert", "epub")
	assert.NotEqual(t, base, Resolve("Dune Messiah", "Herbert", "epub"))
	assert.NotEqual(t, base, Resolve("Dune", "Asimov", "epub"))
	assert.NotEqual(t, base, Resolve("Dune", "Herbert", "mobi"))
}

func TestResolve_EmptyFieldsStillResolve(t *testing.T) {
	// Malformed metadata participates in the formatted string as-is.
	got := Resolve("", "", "")
	sum := md5.Sum([]byte(" - ."))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}
