// Package store persists the association record of this installation.
//
// The record is a small JSON document holding the backend kind, the
// association id and a 32-byte key. It is written atomically with mode 0600
// and refused on load when the file is accessible to anyone but its owner.
package store
