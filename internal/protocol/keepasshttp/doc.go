// Package keepasshttp implements the client side of the KeePassHTTP protocol.
//
// # Overview
//
// Every request is a JSON document POSTed to the KeePassHTTP endpoint. The
// client and the server share a 256-bit AES key negotiated once by the
// associate exchange. Secret-bearing fields are AES-256-CBC ciphertexts,
// base64 encoded, using a fresh 16-byte nonce as the IV.
//
// Each request proves knowledge of the key with a verifier:
//
//	Verifier = base64(AES-CBC(base64(Nonce), key, Nonce))
//
// # Flows
//
// Associate (once per installation):
//  1. Generate a random key and nonce.
//  2. Send RequestType "associate" with Key, Nonce and Verifier.
//  3. The server answers with an Id; key and Id form the Association.
//
// Test-associate (every run): send Id with a fresh Nonce and Verifier. A
// failure means the stored association is no longer accepted.
//
// Get-logins: send the query encrypted in the Url field. The server picks
// its own Nonce for the response, and every entry field is encrypted under
// the shared key and that nonce.
//
// # Errors
//
// Failures are reported with the domain error taxonomy: ServerRejection
// when Success is false, ProtocolError for malformed responses and
// CryptoError when a field or verifier does not decrypt.
package keepasshttp
