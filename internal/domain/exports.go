package domain

import (
	interfaces "cmdipass/internal/domain/interfaces"
	types "cmdipass/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	BackendKind       = types.BackendKind
	Fingerprint       = types.Fingerprint
	Entry             = types.Entry
	Association       = types.Association
	AssociationStatus = types.AssociationStatus
	X25519Public      = types.X25519Public
	X25519Private     = types.X25519Private
	SymmetricKey      = types.SymmetricKey
)

// Backend kinds.
const (
	BackendKeePassHTTP = types.BackendKeePassHTTP
	BackendKeePassXC   = types.BackendKeePassXC
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Backend          = interfaces.Backend
	AssociationStore = interfaces.AssociationStore
	HTTPTransport    = interfaces.HTTPTransport
	SocketTransport  = interfaces.SocketTransport
)
