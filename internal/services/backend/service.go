package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
	"cmdipass/internal/protocol/keepasshttp"
	"cmdipass/internal/protocol/keepassxc"
)

// Service builds backends from the association store and the transports.
type Service struct {
	store   domain.AssociationStore
	http    domain.HTTPTransport
	socket  domain.SocketTransport
	rand    io.Reader
	logger  *slog.Logger
	notices io.Writer
}

// New constructs a backend Service. Notices of first-time association are
// written to notices; a nil rand selects crypto/rand.
func New(
	store domain.AssociationStore,
	http domain.HTTPTransport,
	socket domain.SocketTransport,
	rand io.Reader,
	logger *slog.Logger,
	notices io.Writer,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notices == nil {
		notices = io.Discard
	}
	return &Service{
		store:   store,
		http:    http,
		socket:  socket,
		rand:    crypto.Random(rand),
		logger:  logger,
		notices: notices,
	}
}

// Open returns a ready backend of the given kind.
//
// Steps:
//  1. If an association is stored, load it; permission and format problems
//     fail here, before any traffic.
//  2. Otherwise associate with the server and persist the result.
//  3. Run test-associate with the association.
func (s *Service) Open(ctx context.Context, kind domain.BackendKind) (domain.Backend, error) {
	if err := s.checkKind(kind); err != nil {
		return nil, err
	}

	if !s.store.Exists() {
		fmt.Fprintf(s.notices, "Config file not found at '%s'. Generating new key and registering with server.\n", s.store.Path())
		b, _, err := s.associate(ctx, kind)
		return b, err
	}

	a, err := s.load(kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.BackendKeePassXC:
		return s.openKeePassXC(ctx, a)
	default:
		return s.openKeePassHTTP(ctx, a)
	}
}

// Associate performs first-time association explicitly. It refuses to
// overwrite an existing association.
func (s *Service) Associate(ctx context.Context, kind domain.BackendKind) (domain.AssociationStatus, error) {
	if err := s.checkKind(kind); err != nil {
		return domain.AssociationStatus{}, err
	}
	if s.store.Exists() {
		return domain.AssociationStatus{}, &domain.ConfigError{
			Path:    s.store.Path(),
			Message: "an association already exists; delete the file to re-associate",
		}
	}

	b, a, err := s.associate(ctx, kind)
	if err != nil {
		return domain.AssociationStatus{}, err
	}
	defer b.Close()
	return s.describe(a)
}

// Status describes the stored association without contacting the server.
func (s *Service) Status() (domain.AssociationStatus, error) {
	a, err := s.store.Load()
	if err != nil {
		return domain.AssociationStatus{}, err
	}
	return s.describe(a)
}

func (s *Service) checkKind(kind domain.BackendKind) error {
	if !kind.Valid() {
		return &domain.ConfigError{Message: fmt.Sprintf("unknown backend %q", kind)}
	}
	return nil
}

func (s *Service) load(kind domain.BackendKind) (domain.Association, error) {
	a, err := s.store.Load()
	if err != nil {
		return domain.Association{}, err
	}
	if a.Backend != kind {
		return domain.Association{}, &domain.ConfigError{
			Path: s.store.Path(),
			Message: fmt.Sprintf("stored association is for %s, not %s; select the matching backend or delete the file to re-associate",
				a.Backend, kind),
		}
	}
	return a, nil
}

// associate registers with the server, persists the association, and
// returns a backend that has passed test-associate.
func (s *Service) associate(ctx context.Context, kind domain.BackendKind) (domain.Backend, domain.Association, error) {
	var (
		b   domain.Backend
		a   domain.Association
		err error
	)
	switch kind {
	case domain.BackendKeePassXC:
		b, a, err = s.associateKeePassXC(ctx)
	default:
		b, a, err = s.associateKeePassHTTP(ctx)
	}
	if err != nil {
		return nil, domain.Association{}, err
	}
	s.logger.Info("association created", "backend", kind, "id", a.ID)
	return b, a, nil
}

// persist saves a freshly created association. A failure here loses the
// association; the user has to associate again.
func (s *Service) persist(a domain.Association) error {
	if err := s.store.Save(a); err != nil {
		return err
	}
	fmt.Fprintln(s.notices, "Config file written.")
	return nil
}

func (s *Service) describe(a domain.Association) (domain.AssociationStatus, error) {
	st := domain.AssociationStatus{Path: s.store.Path(), Backend: a.Backend, ID: a.ID}
	switch a.Backend {
	case domain.BackendKeePassXC:
		var secret domain.X25519Private
		copy(secret[:], a.Key)
		pub, err := crypto.PublicKey(secret)
		if err != nil {
			return domain.AssociationStatus{}, err
		}
		st.Fingerprint = crypto.Fingerprint(pub.Slice())
	default:
		st.Fingerprint = crypto.Fingerprint(a.Key)
	}
	return st, nil
}

func (s *Service) newKeePassHTTP() *keepasshttp.Client {
	return keepasshttp.NewClient(s.http, s.rand, s.logger)
}

func (s *Service) newKeePassXC() *keepassxc.Client {
	return keepassxc.NewClient(s.socket, s.rand, s.logger)
}
