package antifraud

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes comment text after case and whitespace folding, so
// trivially edited copies collide.
func Fingerprint(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
