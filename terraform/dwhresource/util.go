package dwhresource

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashTruncate shortens s to at most maxLen characters, replacing the
// tail with hashLen hex characters of its hash so truncated names stay unique.
func hashTruncate(s string, maxLen int, hashLen int) string {
	if len(s) <= maxLen {
		return s
	}
	sum := sha256.Sum256([]byte(s))
	hash := hex.EncodeToString(sum[:])[:hashLen]
	return s[:maxLen-hashLen-1] + "-" + hash
}
