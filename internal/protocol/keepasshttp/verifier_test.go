package keepasshttp

import (
	"bytes"
	"errors"
	"testing"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
)

func TestNewVerifier_DecryptsToNonce(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, crypto.AESKeySize)
	nonce := bytes.Repeat([]byte{0x24}, crypto.IVSize)

	v, err := newVerifier(key, nonce)
	if err != nil {
		t.Fatalf("newVerifier: %v", err)
	}
	ct, err := crypto.FromB64(v)
	if err != nil {
		t.Fatalf("verifier not base64: %v", err)
	}
	pt, err := crypto.DecryptCBC(ct, key, nonce)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(pt) != crypto.B64(nonce) {
		t.Errorf("verifier plaintext = %q, want %q", pt, crypto.B64(nonce))
	}
}

func TestCheckVerifier(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, crypto.AESKeySize)
	otherKey := bytes.Repeat([]byte{0x43}, crypto.AESKeySize)
	nonce := bytes.Repeat([]byte{0x24}, crypto.IVSize)
	good, _ := newVerifier(key, nonce)
	foreign, _ := newVerifier(otherKey, nonce)

	tests := []struct {
		name   string
		resp   response
		target error
	}{
		{"absent", response{}, nil},
		{"valid", response{Nonce: crypto.B64(nonce), Verifier: good}, nil},
		{"other key", response{Nonce: crypto.B64(nonce), Verifier: foreign}, domain.ErrCrypto},
		{"no nonce", response{Verifier: good}, domain.ErrProtocol},
		{"not base64", response{Nonce: crypto.B64(nonce), Verifier: "@@"}, domain.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkVerifier("test-associate", key, &tt.resp)
			if tt.target == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}
