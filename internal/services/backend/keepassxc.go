package backend

import (
	"context"

	"cmdipass/internal/domain"
	"cmdipass/internal/protocol/keepassxc"
)

type keePassXCBackend struct {
	client  *keepassxc.Client
	session *keepassxc.Session
}

func (b *keePassXCBackend) GetEntries(ctx context.Context, query string) ([]domain.Entry, error) {
	return b.client.GetEntries(ctx, b.session, query)
}

func (b *keePassXCBackend) Close() error {
	b.session.Close()
	return nil
}

func (s *Service) openKeePassXC(ctx context.Context, a domain.Association) (domain.Backend, error) {
	var secret domain.X25519Private
	copy(secret[:], a.Key)

	client := s.newKeePassXC()
	session, err := client.ExchangeKeys(ctx, secret)
	if err != nil {
		return nil, err
	}
	if err := client.TestAssociate(ctx, session, a.ID); err != nil {
		session.Close()
		return nil, err
	}
	return &keePassXCBackend{client: client, session: session}, nil
}

func (s *Service) associateKeePassXC(ctx context.Context) (domain.Backend, domain.Association, error) {
	client := s.newKeePassXC()
	secret, err := client.NewSecretKey()
	if err != nil {
		return nil, domain.Association{}, err
	}
	session, err := client.ExchangeKeys(ctx, secret)
	if err != nil {
		return nil, domain.Association{}, err
	}
	assoc, err := client.Associate(ctx, session)
	if err != nil {
		session.Close()
		return nil, domain.Association{}, err
	}

	a := domain.Association{
		Backend: domain.BackendKeePassXC,
		ID:      assoc.ID,
		Key:     append([]byte(nil), assoc.SecretKey[:]...),
	}
	if err := s.persist(a); err != nil {
		session.Close()
		return nil, domain.Association{}, err
	}

	if err := client.TestAssociate(ctx, session, assoc.ID); err != nil {
		session.Close()
		return nil, domain.Association{}, err
	}
	return &keePassXCBackend{client: client, session: session}, a, nil
}
