package types

// Association is the persisted credential negotiated with the password
// manager. Key holds the shared AES key for KeePassHTTP or our Curve25519
// secret key for KeePassXC-Browser; the public half is always derived.
//
// Key is encoded as base64 by encoding/json.
type Association struct {
	Backend BackendKind `json:"backend"`
	ID      string      `json:"id"`
	Key     []byte      `json:"key"`
}

// AssociationStatus summarises a stored association for display.
type AssociationStatus struct {
	Path        string      `json:"path" yaml:"path"`
	Backend     BackendKind `json:"backend" yaml:"backend"`
	ID          string      `json:"id" yaml:"id"`
	Fingerprint Fingerprint `json:"fingerprint" yaml:"fingerprint"`
}
