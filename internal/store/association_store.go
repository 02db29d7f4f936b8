package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"cmdipass/internal/domain"
)

// EnvConfigPath overrides the association file location.
const EnvConfigPath = "CMDIPASS_CONFIG"

// DefaultFileName is the association file name under the home directory.
const DefaultFileName = ".cmdipass"

const fileMode os.FileMode = 0o600

// DefaultPath returns $CMDIPASS_CONFIG if set, else ~/.cmdipass.
func DefaultPath() string {
	return configPath(os.Getenv, os.UserHomeDir)
}

func configPath(getenv func(string) string, home func() (string, error)) string {
	if p := getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := home()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(dir, DefaultFileName)
}

// AssociationFileStore keeps the single association of this installation in
// a JSON file readable only by its owner.
type AssociationFileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewAssociationFileStore returns a store backed by path; an empty path
// selects DefaultPath().
func NewAssociationFileStore(path string, logger *slog.Logger) *AssociationFileStore {
	if path == "" {
		path = DefaultPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AssociationFileStore{path: path, logger: logger}
}

var _ domain.AssociationStore = (*AssociationFileStore)(nil)

func (s *AssociationFileStore) Path() string { return s.path }

// Exists reports whether an association file may be present. Only a
// definite "not found" counts as absent; any other stat failure is left for
// Load to report so that a fresh association is never started over an
// unreadable one.
func (s *AssociationFileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return !errors.Is(err, os.ErrNotExist)
}

// Load reads and validates the association. The file's permissions are
// checked on the open descriptor before any byte is read.
func (s *AssociationFileStore) Load() (domain.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Association{}, s.configErr("no association found", err)
		}
		return domain.Association{}, s.configErr("cannot open", err)
	}
	defer f.Close()

	if err := checkPermissions(f, s.path, s.logger); err != nil {
		return domain.Association{}, err
	}

	raw, err := io.ReadAll(f)
	if err != nil {
		return domain.Association{}, s.configErr("cannot read", err)
	}

	var a domain.Association
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Association{}, s.configErr("invalid association record", err)
	}
	if err := s.validate(a); err != nil {
		return domain.Association{}, err
	}

	s.logger.Debug("association loaded", "path", s.path, "backend", a.Backend)
	return a, nil
}

// Save atomically replaces the association file with mode 0600.
func (s *AssociationFileStore) Save(a domain.Association) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(a); err != nil {
		return err
	}
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return s.configErr("cannot encode association", err)
	}
	if err := writeFile(s.path, b, fileMode); err != nil {
		return s.configErr("cannot write", err)
	}

	s.logger.Debug("association saved", "path", s.path, "backend", a.Backend)
	return nil
}

func (s *AssociationFileStore) validate(a domain.Association) error {
	switch {
	case !a.Backend.Valid():
		return s.configErr(fmt.Sprintf("unknown backend %q", a.Backend), nil)
	case a.ID == "":
		return s.configErr("association id is empty", nil)
	case len(a.Key) != 32:
		return s.configErr(fmt.Sprintf("association key is %d bytes, want 32", len(a.Key)), nil)
	}
	return nil
}

func (s *AssociationFileStore) configErr(msg string, err error) error {
	return &domain.ConfigError{Path: s.path, Message: msg, Err: err}
}
