package app

import (
	"context"

	"cmdipass/internal/domain"
)

// App runs the CLI operations against one backend kind.
type App struct {
	wire *Wire
	kind domain.BackendKind
}

// New builds an App from cfg.
func New(cfg Config) (*App, error) {
	if cfg.Backend == "" {
		cfg.Backend = domain.BackendKeePassHTTP
	}
	w, err := NewWire(cfg)
	if err != nil {
		return nil, err
	}
	return &App{wire: w, kind: cfg.Backend}, nil
}

// Backend reports the selected backend kind.
func (a *App) Backend() domain.BackendKind { return a.kind }

// StorePath reports the association file in use.
func (a *App) StorePath() string { return a.wire.Store.Path() }

// Entries opens the backend and returns every entry matching query.
func (a *App) Entries(ctx context.Context, query string) ([]domain.Entry, error) {
	b, err := a.wire.Backends.Open(ctx, a.kind)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.GetEntries(ctx, query)
}

// Entry returns the single entry matching query chosen by sel.
func (a *App) Entry(ctx context.Context, query string, sel Selector) (domain.Entry, error) {
	entries, err := a.Entries(ctx, query)
	if err != nil {
		return domain.Entry{}, err
	}
	return sel.Pick(entries)
}

// Associate registers with the server and stores the association.
func (a *App) Associate(ctx context.Context) (domain.AssociationStatus, error) {
	return a.wire.Backends.Associate(ctx, a.kind)
}

// Status describes the stored association.
func (a *App) Status() (domain.AssociationStatus, error) {
	return a.wire.Backends.Status()
}
