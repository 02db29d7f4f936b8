package crypto

import (
	"io"

	"golang.org/x/crypto/curve25519"

	"cmdipass/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair read from r.
// The private key is clamped per RFC 7748.
func GenerateX25519(r io.Reader) (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = io.ReadFull(Random(r), priv[:]); err != nil {
		return priv, pub, &domain.CryptoError{Op: "generate key", Err: err}
	}
	clamp(&priv)
	pub, err = PublicKey(priv)
	return priv, pub, err
}

// PublicKey derives the public half of priv. Only the secret key is ever
// persisted.
func PublicKey(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, &domain.CryptoError{Op: "derive public key", Err: err}
	}
	copy(pub[:], pb)
	return pub, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
