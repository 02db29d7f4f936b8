// Package memzero wipes key material that is no longer needed.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros using a copy the compiler cannot elide.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}

// Key wipes a 32-byte key in place.
func Key(k *[32]byte) {
	if k == nil {
		return
	}
	Zero(k[:])
}
