package types

// BackendKind names one of the two supported password-manager protocols.
type BackendKind string

const (
	// BackendKeePassHTTP is the legacy HTTP protocol with AES-CBC envelopes.
	BackendKeePassHTTP BackendKind = "keepasshttp"
	// BackendKeePassXC is the KeePassXC-Browser protocol over a local socket.
	BackendKeePassXC BackendKind = "keepassxc-browser"
)

// String returns the string form of the backend kind.
func (k BackendKind) String() string { return string(k) }

// Valid reports whether k is one of the known backends.
func (k BackendKind) Valid() bool {
	return k == BackendKeePassHTTP || k == BackendKeePassXC
}

// Fingerprint is a short identifier for keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
