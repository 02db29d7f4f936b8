package backend

import (
	"context"

	"cmdipass/internal/domain"
	"cmdipass/internal/protocol/keepasshttp"
	"cmdipass/internal/util/memzero"
)

type keePassHTTPBackend struct {
	client *keepasshttp.Client
	assoc  keepasshttp.Association
}

func (b *keePassHTTPBackend) GetEntries(ctx context.Context, query string) ([]domain.Entry, error) {
	return b.client.GetLogins(ctx, b.assoc, query)
}

func (b *keePassHTTPBackend) Close() error {
	memzero.Key((*[32]byte)(&b.assoc.Key))
	return nil
}

func (s *Service) openKeePassHTTP(ctx context.Context, a domain.Association) (domain.Backend, error) {
	b := &keePassHTTPBackend{client: s.newKeePassHTTP(), assoc: keepasshttp.Association{ID: a.ID}}
	copy(b.assoc.Key[:], a.Key)

	if err := b.client.TestAssociate(ctx, b.assoc); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (s *Service) associateKeePassHTTP(ctx context.Context) (domain.Backend, domain.Association, error) {
	client := s.newKeePassHTTP()
	assoc, err := client.Associate(ctx)
	if err != nil {
		return nil, domain.Association{}, err
	}

	a := domain.Association{
		Backend: domain.BackendKeePassHTTP,
		ID:      assoc.ID,
		Key:     append([]byte(nil), assoc.Key[:]...),
	}
	if err := s.persist(a); err != nil {
		return nil, domain.Association{}, err
	}

	b := &keePassHTTPBackend{client: client, assoc: assoc}
	if err := client.TestAssociate(ctx, assoc); err != nil {
		b.Close()
		return nil, domain.Association{}, err
	}
	return b, a, nil
}
