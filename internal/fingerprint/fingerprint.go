// Package fingerprint derives duplicate-detection keys from raw message text.
//
// The digest is taken over the exact bytes of the message: no case folding,
// no whitespace trimming, no Unicode normalization. Two messages are
// duplicates if and only if their text is byte-identical. The digest is
// deterministic across process restarts so stored keys stay comparable.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode"
)

// Fingerprint is an opaque fixed-width digest of message text.
type Fingerprint string

// Compute returns the fingerprint of text. Pure and deterministic; accepts
// any string, including the empty string and non-ASCII input.
func Compute(text string) Fingerprint {
	sum := sha256.Sum256([]byte(text))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Key returns the storage key for a fingerprint scoped to a guild. Scoping
// keeps identical text posted in different guilds from colliding.
func Key(guildID string, fp Fingerprint) string {
	return guildID + ":" + string(fp)
}

// IsRestrictedEncoding reports whether text contains any character outside
// the ASCII range. This is a policy check, not a fingerprinting concern:
// non-ASCII text still gets fingerprinted like any other.
func IsRestrictedEncoding(text string) bool {
	for i := 0; i < len(text); i++ {
		if text[i] > unicode.MaxASCII {
			return true
		}
	}
	return false
}
