package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"cmdipass/internal/domain"
)

// Fingerprint returns a short hex fingerprint of a key.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(key []byte) domain.Fingerprint {
	sum := sha256.Sum256(key)
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}
