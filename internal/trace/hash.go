package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeHash returns the sha256 hex digest of a canonical trace encoding,
// as produced by BuildTrace.CanonicalJSON. Empty input hashes to "".
func ComputeHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
