package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"cmdipass/internal/domain"
)

// EncryptCBC encrypts plaintext with AES-256-CBC and PKCS#7 padding. The
// nonce is used as the IV, as KeePassHTTP does.
func EncryptCBC(plaintext, key, iv []byte) ([]byte, error) {
	block, err := newCBCBlock("encrypt", key, iv)
	if err != nil {
		return nil, err
	}
	padded := pad(plaintext, aes.BlockSize)
	return stream(cipher.NewCBCEncrypter(block, iv), padded), nil
}

// DecryptCBC reverses EncryptCBC. Bad sizes and bad padding are reported as
// a *domain.CryptoError.
func DecryptCBC(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := newCBCBlock("decrypt", key, iv)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, &domain.CryptoError{
			Op:  "decrypt",
			Err: fmt.Errorf("%w: %d bytes", ErrInvalidCiphertextSize, len(ciphertext)),
		}
	}
	padded := stream(cipher.NewCBCDecrypter(block, iv), ciphertext)
	plaintext, err := unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, &domain.CryptoError{Op: "decrypt", Err: err}
	}
	return plaintext, nil
}

func newCBCBlock(op string, key, iv []byte) (cipher.Block, error) {
	if len(key) != AESKeySize {
		return nil, &domain.CryptoError{
			Op:  op,
			Err: fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize),
		}
	}
	if len(iv) != IVSize {
		return nil, &domain.CryptoError{
			Op:  op,
			Err: fmt.Errorf("%w: got %d, want %d", ErrInvalidIVSize, len(iv), IVSize),
		}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &domain.CryptoError{Op: op, Err: err}
	}
	return block, nil
}

// stream runs whole blocks of in through mode using a fixed intermediate
// buffer and accumulates the output. len(in) must be a multiple of the
// block size.
func stream(mode cipher.BlockMode, in []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(in))

	var buf [streamBufferSize]byte
	for len(in) > 0 {
		n := copy(buf[:], in)
		mode.CryptBlocks(buf[:n], buf[:n])
		out.Write(buf[:n])
		in = in[n:]
	}
	return out.Bytes()
}

func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, blockSize int) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrInvalidPadding
	}
	good := 1
	for _, c := range b[len(b)-n:] {
		good &= subtle.ConstantTimeByteEq(c, byte(n))
	}
	if good != 1 {
		return nil, ErrInvalidPadding
	}
	return b[:len(b)-n], nil
}
