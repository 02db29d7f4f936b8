// Package keepassxc implements the client side of the KeePassXC-Browser
// protocol.
//
// Messages are JSON values exchanged over KeePassXC's local socket. After an
// unauthenticated key exchange, every request is sealed with NaCl box between
// our long-lived secret key and the server's per-run public key.
//
// A Session moves through four states:
//
//	Unkeyed -> KeysExchanged -> Associated -> Ready
//
// ExchangeKeys starts every run. Associate registers our public key with the
// database once per installation. TestAssociate proves the stored association
// is still accepted and makes the session Ready; only then is GetEntries
// allowed.
//
// get-logins carries, besides action and url, a keys list holding our
// association id and public key. KeePassXC matches that list against the
// associations stored in the open database.
package keepassxc
