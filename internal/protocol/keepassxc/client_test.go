package keepassxc_test

import (
	"context"
	"errors"
	"testing"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
	"cmdipass/internal/protocol/keepassxc"
	"cmdipass/internal/protocol/keepassxc/keepassxctest"
)

func newSecret(t *testing.T) domain.X25519Private {
	t.Helper()
	priv, _, err := crypto.GenerateX25519(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return priv
}

// readySession runs the full first-time flow against fake.
func readySession(t *testing.T, c *keepassxc.Client) *keepassxc.Session {
	t.Helper()
	ctx := context.Background()
	s, err := c.ExchangeKeys(ctx, newSecret(t))
	if err != nil {
		t.Fatalf("exchange keys: %v", err)
	}
	a, err := c.Associate(ctx, s)
	if err != nil {
		t.Fatalf("associate: %v", err)
	}
	if err := c.TestAssociate(ctx, s, a.ID); err != nil {
		t.Fatalf("test-associate: %v", err)
	}
	return s
}

func TestExchangeKeys_OK(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	secret := newSecret(t)

	s, err := c.ExchangeKeys(context.Background(), secret)
	if err != nil {
		t.Fatalf("exchange keys: %v", err)
	}
	defer s.Close()

	if s.State() != keepassxc.StateKeysExchanged {
		t.Errorf("state = %s, want keys-exchanged", s.State())
	}
	if s.ServerKey() != fake.PublicKey() {
		t.Error("server key not taken from the reply")
	}
	wantPub, _ := crypto.PublicKey(secret)
	if s.PublicKey() != wantPub {
		t.Error("public key not derived from the secret key")
	}
}

func TestExchangeKeys_BadServerKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"not base64", "***"},
		{"short", crypto.B64(make([]byte, 31))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := keepassxctest.NewServer(t)
			fake.SetServerKey(tt.key)
			c := keepassxc.NewClient(fake, nil, nil)

			_, err := c.ExchangeKeys(context.Background(), newSecret(t))
			if !errors.Is(err, domain.ErrProtocol) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
		})
	}
}

func TestAssociate_ThenReady(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	ctx := context.Background()
	secret := newSecret(t)

	s, err := c.ExchangeKeys(ctx, secret)
	if err != nil {
		t.Fatalf("exchange keys: %v", err)
	}
	a, err := c.Associate(ctx, s)
	if err != nil {
		t.Fatalf("associate: %v", err)
	}
	if a.ID != "abc" || a.SecretKey != secret {
		t.Errorf("association = {%q, ...}, want id abc and our secret key", a.ID)
	}
	if s.State() != keepassxc.StateAssociated {
		t.Errorf("state = %s, want associated", s.State())
	}

	if err := c.TestAssociate(ctx, s, a.ID); err != nil {
		t.Fatalf("test-associate: %v", err)
	}
	if s.State() != keepassxc.StateReady {
		t.Errorf("state = %s, want ready", s.State())
	}
}

func TestTestAssociate_StoredAssociation(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	ctx := context.Background()

	stored := keepassxc.Association{SecretKey: newSecret(t), ID: "abc"}
	pub, err := crypto.PublicKey(stored.SecretKey)
	if err != nil {
		t.Fatal(err)
	}
	fake.Register("abc", pub)

	s, err := c.ExchangeKeys(ctx, stored.SecretKey)
	if err != nil {
		t.Fatalf("exchange keys: %v", err)
	}
	if err := c.TestAssociate(ctx, s, stored.ID); err != nil {
		t.Fatalf("test-associate: %v", err)
	}
	if s.State() != keepassxc.StateReady || s.ID() != "abc" {
		t.Errorf("state = %s, id = %q; want ready, abc", s.State(), s.ID())
	}
	for _, a := range fake.Actions() {
		if a == "associate" {
			t.Error("stored association triggered a new associate")
		}
	}
}

func TestTestAssociate_Rejected(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	ctx := context.Background()

	s, err := c.ExchangeKeys(ctx, newSecret(t))
	if err != nil {
		t.Fatalf("exchange keys: %v", err)
	}
	err = c.TestAssociate(ctx, s, "unknown")
	if !errors.Is(err, domain.ErrConfigRejected) {
		t.Fatalf("expected ErrConfigRejected, got %v", err)
	}
	if s.State() != keepassxc.StateKeysExchanged {
		t.Errorf("state = %s after rejection", s.State())
	}
}

func TestGetEntries_OK(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	want := []domain.Entry{
		{Name: "GitHub", Login: "alice", Password: "hunter2", UUID: "0123456789abcdef0123456789abcdef"},
		{Name: "GitHub (work)", Login: "alice@corp", Password: "s3cret", UUID: "fedcba9876543210fedcba9876543210"},
	}
	fake.SetEntries(want...)
	c := keepassxc.NewClient(fake, nil, nil)
	s := readySession(t, c)

	got, err := c.GetEntries(context.Background(), s, "github.com")
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("entries = %+v", got)
	}
	if q := fake.Queries(); len(q) != 1 || q[0] != "github.com" {
		t.Errorf("server saw queries %q", q)
	}
	if ids := fake.LoginIDs(); len(ids) != 1 || ids[0] != "abc" {
		t.Errorf("get-logins keys matched %q, want [abc]", ids)
	}
}

func TestGetEntries_ServerRejection(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	s := readySession(t, c)
	fake.Reject("get-logins", "entry not found")

	_, err := c.GetEntries(context.Background(), s, "github.com")
	var rejection *domain.ServerRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected *domain.ServerRejection, got %v", err)
	}
	if rejection.Action != "get-logins" || rejection.Message != "entry not found" {
		t.Errorf("rejection = %+v", rejection)
	}
}

func TestGetEntries_RequiresReady(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)

	s, err := c.ExchangeKeys(context.Background(), newSecret(t))
	if err != nil {
		t.Fatalf("exchange keys: %v", err)
	}
	_, err = c.GetEntries(context.Background(), s, "github.com")
	if !errors.Is(err, keepassxc.ErrSessionState) {
		t.Fatalf("expected ErrSessionState, got %v", err)
	}
	if a := fake.Actions(); len(a) != 1 {
		t.Errorf("sent %v, want only the key exchange", a)
	}
}

func TestAssociate_RequiresKeysExchanged(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	s := readySession(t, c)

	if _, err := c.Associate(context.Background(), s); !errors.Is(err, keepassxc.ErrSessionState) {
		t.Fatalf("expected ErrSessionState, got %v", err)
	}
}

func TestSealedResponse_Faults(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *keepassxctest.Server)
		target error
	}{
		{"tampered message", func(f *keepassxctest.Server) { f.SetTamper(true) }, domain.ErrCrypto},
		{"nonce not base64", func(f *keepassxctest.Server) { f.SetReplyNonce("%%%not-base64") }, domain.ErrProtocol},
		{"short nonce", func(f *keepassxctest.Server) { f.SetReplyNonce(crypto.B64(make([]byte, 16))) }, domain.ErrProtocol},
		{"neither message nor error", func(f *keepassxctest.Server) { f.SetOmitMessage(true) }, domain.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := keepassxctest.NewServer(t)
			c := keepassxc.NewClient(fake, nil, nil)
			s, err := c.ExchangeKeys(context.Background(), newSecret(t))
			if err != nil {
				t.Fatalf("exchange keys: %v", err)
			}
			tt.setup(fake)

			_, err = c.Associate(context.Background(), s)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if s.State() != keepassxc.StateKeysExchanged {
				t.Errorf("state = %s after failure", s.State())
			}
		})
	}
}

func TestSession_Close(t *testing.T) {
	fake := keepassxctest.NewServer(t)
	c := keepassxc.NewClient(fake, nil, nil)
	s := readySession(t, c)

	s.Close()
	if s.State() != keepassxc.StateUnkeyed {
		t.Errorf("state = %s after Close", s.State())
	}
	if _, err := c.GetEntries(context.Background(), s, "x"); !errors.Is(err, keepassxc.ErrSessionState) {
		t.Errorf("expected ErrSessionState after Close, got %v", err)
	}
}
