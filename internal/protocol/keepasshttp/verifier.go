package keepasshttp

import (
	"crypto/subtle"
	"fmt"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
)

// newVerifier returns base64(encrypt(base64(nonce), key, nonce)).
func newVerifier(key, nonce []byte) (string, error) {
	ct, err := crypto.EncryptCBC([]byte(crypto.B64(nonce)), key, nonce)
	if err != nil {
		return "", err
	}
	return crypto.B64(ct), nil
}

// checkVerifier validates the Verifier of a response, when the server sent
// one.
func checkVerifier(action string, key []byte, resp *response) error {
	if resp.Verifier == "" {
		return nil
	}
	nonce, err := decodeNonce(action, resp.Nonce)
	if err != nil {
		return err
	}
	ct, err := crypto.FromB64(resp.Verifier)
	if err != nil {
		return &domain.ProtocolError{Action: action, Message: "Verifier is not base64", Err: err}
	}
	pt, err := crypto.DecryptCBC(ct, key, nonce)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(pt, []byte(resp.Nonce)) != 1 {
		return &domain.CryptoError{
			Op:      "verify",
			Message: "response verifier does not match its nonce",
			Err:     crypto.ErrVerificationFailed,
		}
	}
	return nil
}

func decodeNonce(action, s string) ([]byte, error) {
	if s == "" {
		return nil, &domain.ProtocolError{Action: action, Message: "response has no Nonce"}
	}
	nonce, err := crypto.FromB64(s)
	if err != nil {
		return nil, &domain.ProtocolError{Action: action, Message: "Nonce is not base64", Err: err}
	}
	if len(nonce) != crypto.IVSize {
		return nil, &domain.ProtocolError{
			Action:  action,
			Message: fmt.Sprintf("Nonce is %d bytes, want %d", len(nonce), crypto.IVSize),
		}
	}
	return nonce, nil
}
