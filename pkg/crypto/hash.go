// Package crypto is a thin hashing facade offering, behind one import, the
// same hashing as the ad hoc sha256.Sum256 call sites in this tree
// (store.go, engineeringlog); those call sites hash directly and do not
// use this package. It follows the way
// core/pkg/crypto.Hasher and core/pkg/rir.ComputeBundleHash each
// reimplement their own canonicalize-then-hash pair. There is no signer
// here: the reference implementation never signs artifacts or registry
// records, only hashes them, so an Ed25519 signer would have no caller
// (see DESIGN.md).
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
)

// Hasher computes deterministic content hashes. CanonicalHasher is the only
// implementation; the interface exists so callers depend on behavior, not
// on this package's internals.
type Hasher interface {
	Hash(v any) (string, error)
}

// CanonicalHasher hashes values via pkg/canonicalize's JCS-style encoding.
type CanonicalHasher struct{}

// NewCanonicalHasher returns the canonical hasher.
func NewCanonicalHasher() *CanonicalHasher { return &CanonicalHasher{} }

// Hash canonicalizes v and returns the hex SHA-256 digest of the result.
func (h *CanonicalHasher) Hash(v any) (string, error) {
	return canonicalize.ContentHash(v)
}

// HashBytes returns the hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashString returns the hex SHA-256 digest of the UTF-8 bytes of s.
func HashString(s string) string {
	return canonicalize.SHA256Hex(s)
}

// HashFile returns the hex SHA-256 digest of the file at path, streaming it
// rather than reading it fully into memory first — the one thing none of
// the existing sha256.Sum256(os.ReadFile(...)) call sites do, which matters
// once snapshot archives grow past what's comfortable to hold twice.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
