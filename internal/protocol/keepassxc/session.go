package keepassxc

import (
	"errors"
	"fmt"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
	"cmdipass/internal/util/memzero"
)

// ClientIDSize is the length of the random per-run client id.
const ClientIDSize = 24

// State is the position of a Session in the protocol.
type State int

const (
	StateUnkeyed State = iota
	StateKeysExchanged
	StateAssociated
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnkeyed:
		return "unkeyed"
	case StateKeysExchanged:
		return "keys-exchanged"
	case StateAssociated:
		return "associated"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrSessionState is returned when an operation is invoked in the wrong state.
var ErrSessionState = errors.New("keepassxc: operation not allowed in current session state")

// Association is the persisted half of the protocol: our secret key and the
// id the database assigned to its public half.
type Association struct {
	SecretKey domain.X25519Private
	ID        string
}

// Session is the per-run pairing of our secret key with the server's
// ephemeral public key. It is never persisted.
type Session struct {
	state     State
	secretKey domain.X25519Private
	publicKey domain.X25519Public
	serverKey domain.X25519Public
	clientID  [ClientIDSize]byte
	id        string
	box       *crypto.Box
}

// State reports the session state.
func (s *Session) State() State { return s.state }

// PublicKey returns our public key.
func (s *Session) PublicKey() domain.X25519Public { return s.publicKey }

// ServerKey returns the server's public key for this run.
func (s *Session) ServerKey() domain.X25519Public { return s.serverKey }

// ID returns the association id once the session is Associated or Ready.
func (s *Session) ID() string { return s.id }

// Close wipes key material. The session is unusable afterwards.
func (s *Session) Close() {
	if s.box != nil {
		s.box.Close()
		s.box = nil
	}
	memzero.Key((*[32]byte)(&s.secretKey))
	s.state = StateUnkeyed
}

func (s *Session) require(op string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return fmt.Errorf("%w: %s in state %s", ErrSessionState, op, s.state)
}
