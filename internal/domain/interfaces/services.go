package interfaces

import (
	"context"

	domaintypes "cmdipass/internal/domain/types"
)

// Backend retrieves credential entries from a password manager. Both the
// KeePassHTTP and KeePassXC-Browser clients implement it. Close releases
// session key material; the backend is unusable afterwards.
type Backend interface {
	GetEntries(ctx context.Context, query string) ([]domaintypes.Entry, error)
	Close() error
}
