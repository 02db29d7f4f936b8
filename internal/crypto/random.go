package crypto

import (
	"crypto/rand"
	"errors"
	"io"

	"cmdipass/internal/domain"
)

// Random returns r, or crypto/rand.Reader when r is nil. Clients take the
// random source as a dependency so tests can substitute a deterministic one.
func Random(r io.Reader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}

// RandomBytes reads n fresh bytes from r.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Random(r), b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			err = ErrShortRead
		}
		return nil, &domain.CryptoError{Op: "random", Err: err}
	}
	return b, nil
}

// NewBoxNonce returns a fresh random nonce for a single sealed message.
func NewBoxNonce(r io.Reader) (*[BoxNonceSize]byte, error) {
	b, err := RandomBytes(r, BoxNonceSize)
	if err != nil {
		return nil, err
	}
	var nonce [BoxNonceSize]byte
	copy(nonce[:], b)
	return &nonce, nil
}
