package interfaces

import domaintypes "cmdipass/internal/domain/types"

// AssociationStore persists the single association of this installation.
// Load must refuse to read a file that other users can access.
type AssociationStore interface {
	Path() string
	Exists() bool
	Load() (domaintypes.Association, error)
	Save(association domaintypes.Association) error
}
