package crypto

import (
	"crypto/aes"

	"golang.org/x/crypto/nacl/box"
)

const (
	// AESKeySize is the AES-256 key size shared with KeePassHTTP.
	AESKeySize = 32
	// IVSize is the CBC initialization vector size; the protocol nonce doubles as the IV.
	IVSize = aes.BlockSize

	// BoxKeySize is the size of Curve25519 keys used with NaCl box.
	BoxKeySize = 32
	// BoxNonceSize is the NaCl box nonce size.
	BoxNonceSize = 24
	// BoxOverhead is the authenticator length added by box.Seal.
	BoxOverhead = box.Overhead

	// streamBufferSize is the intermediate buffer used while processing CBC blocks.
	streamBufferSize = 256
)
