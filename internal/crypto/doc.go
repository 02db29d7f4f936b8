// Package crypto exposes the primitives used by the two password-manager
// protocols.
//
// Contents
//
//   - AES-256-CBC with PKCS#7 padding, the KeePassHTTP envelope (EncryptCBC,
//     DecryptCBC). The per-message nonce doubles as the IV.
//   - NaCl box (X25519 + XSalsa20-Poly1305), the KeePassXC-Browser envelope
//     (Box, Seal, Open). Opening fails closed on any modification.
//   - X25519 key generation and public key derivation (GenerateX25519, PublicKey)
//   - Random source injection (Random, RandomBytes, NewBoxNonce)
//   - Base64 helpers and short key fingerprints (B64, FromB64, Fingerprint)
//
// # Notes
//
// CBC is malleable: it has no authenticator, so only damage that reaches the
// padding is detected by DecryptCBC. KeePassHTTP compensates with its
// verifier field. All failures are returned as *domain.CryptoError.
package crypto
