package crypto

import (
	"golang.org/x/crypto/nacl/box"

	"cmdipass/internal/domain"
	"cmdipass/internal/util/memzero"
)

// Box seals and opens messages between our secret key and a peer public key
// using NaCl box (X25519, XSalsa20-Poly1305). The shared key is computed
// once per peer.
type Box struct {
	shared [32]byte
}

// NewBox precomputes the shared key for peer and secret.
func NewBox(peer domain.X25519Public, secret domain.X25519Private) *Box {
	b := &Box{}
	box.Precompute(&b.shared, (*[32]byte)(&peer), (*[32]byte)(&secret))
	return b
}

// Seal encrypts and authenticates plaintext under nonce. A nonce must never
// be reused with the same key pair.
func (b *Box) Seal(plaintext []byte, nonce *[BoxNonceSize]byte) []byte {
	return box.SealAfterPrecomputation(nil, plaintext, nonce, &b.shared)
}

// Open authenticates and decrypts ciphertext. Any modification of the
// ciphertext, nonce or keys makes it fail.
func (b *Box) Open(ciphertext []byte, nonce *[BoxNonceSize]byte) ([]byte, error) {
	plaintext, ok := box.OpenAfterPrecomputation(nil, ciphertext, nonce, &b.shared)
	if !ok {
		return nil, &domain.CryptoError{
			Op:      "open",
			Message: "tampering or protocol mismatch",
			Err:     ErrVerificationFailed,
		}
	}
	return plaintext, nil
}

// Close wipes the shared key.
func (b *Box) Close() {
	memzero.Key(&b.shared)
}

// Seal is a one-shot form of Box.Seal.
func Seal(plaintext []byte, nonce *[BoxNonceSize]byte, peer domain.X25519Public, secret domain.X25519Private) []byte {
	return box.Seal(nil, plaintext, nonce, (*[32]byte)(&peer), (*[32]byte)(&secret))
}

// Open is a one-shot form of Box.Open.
func Open(ciphertext []byte, nonce *[BoxNonceSize]byte, peer domain.X25519Public, secret domain.X25519Private) ([]byte, error) {
	b := NewBox(peer, secret)
	defer b.Close()
	return b.Open(ciphertext, nonce)
}
