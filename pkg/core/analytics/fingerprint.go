// Package analytics holds the pure parts of view aggregation: visitor
// fingerprinting, event classification and reporting over an AggregateRecord.
package analytics

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLen is the length of every fingerprint returned by Hasher.
const FingerprintLen = sha256.Size * 2

// Hasher derives pseudonymous visitor fingerprints. The salt keeps
// fingerprints from being joined across deployments; it is not a secret
// boundary.
type Hasher struct {
	salt string
}

func NewHasher(salt string) Hasher {
	return Hasher{salt: salt}
}

// Fingerprint returns a fixed-length hex token for an address and user agent.
// Equal inputs always give equal tokens.
func (h Hasher) Fingerprint(addr, userAgent string) string {
	sum := sha256.New()
	sum.Write([]byte(h.salt))
	sum.Write([]byte{0})
	sum.Write([]byte(addr))
	sum.Write([]byte{0})
	sum.Write([]byte(userAgent))
	return hex.EncodeToString(sum.Sum(nil))
}
