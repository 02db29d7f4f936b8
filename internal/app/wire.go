package app

import (
	"log/slog"
	"net/http"
	"time"

	"cmdipass/internal/domain"
	backendsvc "cmdipass/internal/services/backend"
	"cmdipass/internal/store"
	"cmdipass/internal/transport"
)

// DefaultHTTPTimeout bounds a KeePassHTTP round trip when no client is given.
const DefaultHTTPTimeout = 30 * time.Second

// Wire bundles the store, transports and backend service for the CLI.
type Wire struct {
	Store    domain.AssociationStore
	HTTP     domain.HTTPTransport
	Socket   domain.SocketTransport
	Backends *backendsvc.Service
	Logger   *slog.Logger
}

// NewWire constructs the dependency graph from cfg. Nothing is opened or
// contacted until a backend is used.
func NewWire(cfg Config) (*Wire, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	associationStore := store.NewAssociationFileStore(cfg.StorePath, logger)

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	url := cfg.URL
	if url == "" {
		url = transport.DefaultKeePassHTTPURL
	}

	httpTransport := transport.NewHTTP(url, httpClient, logger)
	socketTransport := transport.NewSocket(cfg.Socket, logger)

	backends := backendsvc.New(associationStore, httpTransport, socketTransport, cfg.Rand, logger, cfg.Notices)

	return &Wire{
		Store:    associationStore,
		HTTP:     httpTransport,
		Socket:   socketTransport,
		Backends: backends,
		Logger:   logger,
	}, nil
}
