// Package keepassxctest provides an in-memory KeePassXC-Browser server for
// tests. Server implements domain.SocketTransport and can also be exposed on
// a real Unix socket.
package keepassxctest

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"

	"golang.org/x/crypto/nacl/box"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
)

// Server answers change-public-keys, associate, test-associate and
// get-logins.
type Server struct {
	tb testing.TB

	mu         sync.Mutex
	serverPub  [32]byte
	serverPriv [32]byte
	clientPub  [32]byte
	clientID   string
	nextID     string
	associated map[string][32]byte
	entries    []domain.Entry

	reject      map[string]string
	tamper      bool
	nonce       string
	omitMessage bool
	serverKey   string

	actions  []string
	queries  []string
	loginIDs []string
	nonces   map[string]bool
}

// NewServer returns a server with a fresh key pair that assigns id "abc" on
// associate.
func NewServer(tb testing.TB) *Server {
	tb.Helper()
	pub, priv, err := box.GenerateKey(crypto.Random(nil))
	if err != nil {
		tb.Fatalf("keepassxctest: server key: %v", err)
	}
	return &Server{
		tb:         tb,
		serverPub:  *pub,
		serverPriv: *priv,
		nextID:     "abc",
		associated: map[string][32]byte{},
		reject:     map[string]string{},
		nonces:     map[string]bool{},
	}
}

// PublicKey returns the key the server hands out in key exchange.
func (s *Server) PublicKey() domain.X25519Public { return s.serverPub }

// Register records pub as associated under id.
func (s *Server) Register(id string, pub domain.X25519Public) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associated[id] = pub
}

// SetEntries sets the entries returned by get-logins. With no entries the
// server answers "No logins found".
func (s *Server) SetEntries(entries ...domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Reject makes action fail with a plaintext error field.
func (s *Server) Reject(action, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject[action] = msg
}

// SetTamper corrupts every sealed reply.
func (s *Server) SetTamper(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tamper = on
}

// SetReplyNonce replaces the nonce field of sealed replies.
func (s *Server) SetReplyNonce(nonce string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonce = nonce
}

// SetOmitMessage makes sealed replies carry neither message nor error.
func (s *Server) SetOmitMessage(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitMessage = on
}

// SetServerKey replaces the publicKey field of the key-exchange reply.
func (s *Server) SetServerKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverKey = key
}

// Actions returns the envelope action of every request so far.
func (s *Server) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.actions...)
}

// Queries returns the url of every get-logins so far.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// LoginIDs returns, for every get-logins so far, the ids in its keys list
// that match a registered association.
func (s *Server) LoginIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loginIDs...)
}

// RoundTrip handles one request in-process.
func (s *Server) RoundTrip(_ context.Context, request []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle(request), nil
}

// ServeUnix listens on path and answers one request per connection. The
// reply is written in two halves. The listener is closed when the test ends.
func (s *Server) ServeUnix(path string) {
	s.tb.Helper()
	listener, err := net.Listen("unix", path)
	if err != nil {
		s.tb.Fatalf("keepassxctest: listen: %v", err)
	}
	s.tb.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go s.serveConn(conn)
		}
	}()
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(conn).Decode(&raw); err != nil {
		return
	}
	resp, _ := s.RoundTrip(context.Background(), raw)
	half := len(resp) / 2
	_, _ = conn.Write(resp[:half])
	_, _ = conn.Write(resp[half:])
}

type envelope struct {
	Action    string `json:"action"`
	PublicKey string `json:"publicKey"`
	Nonce     string `json:"nonce"`
	ClientID  string `json:"clientID"`
	Message   string `json:"message"`
}

type payload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Key    string `json:"key"`
	URL    string `json:"url"`
	Keys   []struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	} `json:"keys"`
}

func (s *Server) handle(request []byte) []byte {
	var env envelope
	if err := json.Unmarshal(request, &env); err != nil {
		s.tb.Errorf("keepassxctest: bad envelope %s: %v", request, err)
		return s.encode(map[string]string{"error": "bad envelope"})
	}
	s.actions = append(s.actions, env.Action)
	if s.nonces[env.Nonce] {
		s.tb.Errorf("keepassxctest: nonce %s reused", env.Nonce)
	}
	s.nonces[env.Nonce] = true

	if env.Action == "change-public-keys" {
		return s.changePublicKeys(env)
	}

	if env.ClientID != s.clientID {
		s.tb.Errorf("keepassxctest: clientID changed within a session")
	}
	if msg, ok := s.reject[env.Action]; ok {
		return s.encode(map[string]string{"action": env.Action, "error": msg})
	}

	var nonce [24]byte
	rawNonce, _ := crypto.FromB64(env.Nonce)
	copy(nonce[:], rawNonce)
	sealed, _ := crypto.FromB64(env.Message)
	plaintext, ok := box.Open(nil, sealed, &nonce, &s.clientPub, &s.serverPriv)
	if !ok {
		return s.encode(map[string]string{"action": env.Action, "error": "cannot decrypt message"})
	}

	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		s.tb.Errorf("keepassxctest: bad payload %s: %v", plaintext, err)
	}
	if p.Action != env.Action {
		s.tb.Errorf("keepassxctest: envelope action %q, payload action %q", env.Action, p.Action)
	}

	switch p.Action {
	case "associate":
		s.associated[s.nextID] = s.clientPub
		return s.sealReply(env.Action, map[string]any{"id": s.nextID, "hash": "0123", "success": "true"})

	case "test-associate":
		key, ok := s.associated[p.ID]
		if !ok || crypto.B64(key[:]) != p.Key {
			return s.encode(map[string]string{"action": env.Action, "error": "Association failed", "errorCode": "9"})
		}
		return s.sealReply(env.Action, map[string]any{"id": p.ID, "success": "true"})

	case "get-logins":
		s.queries = append(s.queries, p.URL)
		for _, k := range p.Keys {
			if key, ok := s.associated[k.ID]; ok && crypto.B64(key[:]) == k.Key {
				s.loginIDs = append(s.loginIDs, k.ID)
			}
		}
		if len(s.entries) == 0 {
			return s.encode(map[string]string{"action": env.Action, "error": "No logins found", "errorCode": "15"})
		}
		return s.sealReply(env.Action, map[string]any{"count": len(s.entries), "entries": s.entries, "success": "true"})
	}
	return s.encode(map[string]string{"action": env.Action, "error": "unknown action"})
}

func (s *Server) changePublicKeys(env envelope) []byte {
	pub, err := crypto.FromB64(env.PublicKey)
	if err != nil || len(pub) != 32 {
		return s.encode(map[string]string{"action": env.Action, "error": "bad key"})
	}
	if clientID, _ := crypto.FromB64(env.ClientID); len(clientID) != 24 {
		s.tb.Errorf("keepassxctest: clientID is %d bytes", len(clientID))
	}
	copy(s.clientPub[:], pub)
	s.clientID = env.ClientID

	key := crypto.B64(s.serverPub[:])
	if s.serverKey != "" {
		key = s.serverKey
	}
	return s.encode(map[string]string{"action": env.Action, "publicKey": key, "version": "2.7.0", "nonce": env.Nonce, "success": "true"})
}

func (s *Server) sealReply(action string, v any) []byte {
	if s.omitMessage {
		return s.encode(map[string]string{"action": action})
	}
	plaintext, err := json.Marshal(v)
	if err != nil {
		s.tb.Fatalf("keepassxctest: %v", err)
	}
	nonce, err := crypto.NewBoxNonce(nil)
	if err != nil {
		s.tb.Fatalf("keepassxctest: %v", err)
	}
	sealed := box.Seal(nil, plaintext, nonce, &s.clientPub, &s.serverPriv)
	if s.tamper {
		sealed[len(sealed)-1] ^= 0x01
	}
	nonceField := crypto.B64(nonce[:])
	if s.nonce != "" {
		nonceField = s.nonce
	}
	return s.encode(map[string]string{"action": action, "message": crypto.B64(sealed), "nonce": nonceField})
}

func (s *Server) encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		s.tb.Fatalf("keepassxctest: %v", err)
	}
	return b
}
