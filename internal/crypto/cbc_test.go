package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"cmdipass/internal/domain"
)

func TestEncryptCBC_DecryptCBC_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"simple", []byte("hello world")},
		{"one block", bytes.Repeat([]byte{'a'}, IVSize)},
		{"base64 nonce", []byte("AAECAwQFBgcICQoLDA0ODw==")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}},
		{"larger than stream buffer", make([]byte, 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, AESKeySize)
			if _, err := rand.Read(key); err != nil {
				t.Fatal(err)
			}
			iv := make([]byte, IVSize)
			if _, err := rand.Read(iv); err != nil {
				t.Fatal(err)
			}

			ciphertext, err := EncryptCBC(tt.plaintext, key, iv)
			if err != nil {
				t.Fatalf("EncryptCBC() error = %v", err)
			}

			// PKCS#7 always adds between 1 and 16 bytes.
			wantLen := (len(tt.plaintext)/IVSize + 1) * IVSize
			if len(ciphertext) != wantLen {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), wantLen)
			}

			decrypted, err := DecryptCBC(ciphertext, key, iv)
			if err != nil {
				t.Fatalf("DecryptCBC() error = %v", err)
			}
			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %x, want %x", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncryptCBC_KnownVector(t *testing.T) {
	// NIST SP 800-38A F.2.5, first block, with the PKCS#7 pad block appended.
	key := mustHex(t, "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")
	iv := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	plaintext := mustHex(t, "6bc1bee22e409f96e93d7e117393172a")
	want := mustHex(t, "f58c4c04d6e5f1ba779eabfb5f7bfbd6")

	ciphertext, err := EncryptCBC(plaintext, key, iv)
	if err != nil {
		t.Fatalf("EncryptCBC() error = %v", err)
	}
	if !bytes.Equal(ciphertext[:IVSize], want) {
		t.Errorf("first block = %x, want %x", ciphertext[:IVSize], want)
	}
}

func TestEncryptCBC_InvalidSizes(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
		ivSize  int
		want    error
	}{
		{"empty key", 0, IVSize, ErrInvalidKeySize},
		{"aes-128 key", 16, IVSize, ErrInvalidKeySize},
		{"too long key", 64, IVSize, ErrInvalidKeySize},
		{"short nonce", AESKeySize, 8, ErrInvalidIVSize},
		{"box nonce", AESKeySize, BoxNonceSize, ErrInvalidIVSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncryptCBC([]byte("test"), make([]byte, tt.keySize), make([]byte, tt.ivSize))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, domain.ErrCrypto) {
				t.Errorf("expected a CryptoError, got %T", err)
			}
		})
	}
}

func TestDecryptCBC_InvalidCiphertext(t *testing.T) {
	key := make([]byte, AESKeySize)
	iv := make([]byte, IVSize)

	tests := []struct {
		name       string
		ciphertext []byte
	}{
		{"empty", nil},
		{"truncated block", make([]byte, IVSize-1)},
		{"one and a half blocks", make([]byte, IVSize+8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptCBC(tt.ciphertext, key, iv)
			if !errors.Is(err, ErrInvalidCiphertextSize) {
				t.Errorf("expected ErrInvalidCiphertextSize, got %v", err)
			}
		})
	}
}

func TestDecryptCBC_TamperedPadding(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, AESKeySize)
	iv := bytes.Repeat([]byte{0x22}, IVSize)
	// 25 bytes: the final block carries 7 bytes of 0x07 padding.
	plaintext := []byte("hello world, this is long")

	ciphertext, err := EncryptCBC(plaintext, key, iv)
	if err != nil {
		t.Fatalf("EncryptCBC() error = %v", err)
	}

	// Flipping a bit in the previous block flips the same bit of the final
	// plaintext block, so the last padding byte becomes 0x06.
	ciphertext[IVSize-1] ^= 0x01

	_, err = DecryptCBC(ciphertext, key, iv)
	if !errors.Is(err, ErrInvalidPadding) {
		t.Fatalf("expected ErrInvalidPadding, got %v", err)
	}
	var cryptoErr *domain.CryptoError
	if !errors.As(err, &cryptoErr) {
		t.Fatalf("expected *domain.CryptoError, got %T", err)
	}
}

func TestDecryptCBC_TamperedNonce(t *testing.T) {
	key := bytes.Repeat([]byte{0x33}, AESKeySize)
	iv := bytes.Repeat([]byte{0x44}, IVSize)

	// A short plaintext lives in one block, so the IV controls the padding.
	ciphertext, err := EncryptCBC([]byte("hello"), key, iv)
	if err != nil {
		t.Fatalf("EncryptCBC() error = %v", err)
	}
	iv[IVSize-1] ^= 0x01

	if _, err := DecryptCBC(ciphertext, key, iv); !errors.Is(err, ErrInvalidPadding) {
		t.Fatalf("expected ErrInvalidPadding, got %v", err)
	}
}

func TestUnpad(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    []byte
		wantErr bool
	}{
		{"one byte", append([]byte("abcdefghijklmno"), 0x01), []byte("abcdefghijklmno"), false},
		{"full block", bytes.Repeat([]byte{0x10}, 16), []byte{}, false},
		{"zero pad", append(make([]byte, 15), 0x00), nil, true},
		{"pad too large", append(make([]byte, 15), 0x11), nil, true},
		{"inconsistent", append(bytes.Repeat([]byte{0x03}, 14), 0x02, 0x03), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpad(tt.in, IVSize)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPadding) {
					t.Fatalf("expected ErrInvalidPadding, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unpad() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("unpad() = %x, want %x", got, tt.want)
			}
		})
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex: %v", err)
	}
	return b
}
