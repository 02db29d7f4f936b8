package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when the AES key size is invalid.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidIVSize is returned when the CBC nonce size is invalid.
	ErrInvalidIVSize = errors.New("invalid nonce size")

	// ErrInvalidCiphertextSize is returned when a CBC ciphertext is empty or
	// not a whole number of blocks.
	ErrInvalidCiphertextSize = errors.New("invalid ciphertext size")

	// ErrInvalidPadding is returned when PKCS#7 padding cannot be stripped.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrVerificationFailed is returned when a sealed message fails authentication.
	ErrVerificationFailed = errors.New("message verification failed")

	// ErrShortRead is returned when the random source runs dry.
	ErrShortRead = errors.New("random source returned too few bytes")
)
