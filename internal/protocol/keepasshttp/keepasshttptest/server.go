// Package keepasshttptest provides an in-memory KeePassHTTP server for tests.
package keepasshttptest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
)

// Request is the union of every field a client may send.
type Request struct {
	RequestType   string
	TriggerUnlock *bool
	Key           string
	ID            string `json:"Id"`
	Nonce         string
	Verifier      string
	URL           string `json:"Url"`
}

// ResponseNonce is the server-chosen nonce of every response.
var ResponseNonce = []byte("server-nonce-16b")

// Server is a minimal KeePassHTTP implementation: one association, a fixed
// list of entries and switchable faults.
type Server struct {
	*httptest.Server
	tb testing.TB

	mu          sync.Mutex
	id          string
	key         []byte
	entries     []domain.Entry
	reject      map[string]string
	badVerifier bool
	requests    []Request
	bodies      []string
	queries     []string
}

// NewServer starts a server that hands out id on associate. It is closed
// when the test ends.
func NewServer(tb testing.TB, id string) *Server {
	tb.Helper()
	s := &Server{tb: tb, id: id, reject: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	tb.Cleanup(s.Close)
	return s
}

// Register installs an existing association, as if associate had run in an
// earlier process.
func (s *Server) Register(id string, key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.key = append([]byte(nil), key...)
}

// SetEntries sets the entries returned by every get-logins.
func (s *Server) SetEntries(entries ...domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Reject makes requestType fail with Success=false and msg.
func (s *Server) Reject(requestType, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject[requestType] = msg
}

// SetBadVerifier makes responses carry a verifier for the wrong plaintext.
func (s *Server) SetBadVerifier(bad bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badVerifier = bad
}

// Key returns the registered association key.
func (s *Server) Key() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.key...)
}

// Requests returns every decoded request so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Bodies returns every raw request body so far.
func (s *Server) Bodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies...)
}

// Queries returns the decrypted get-logins queries so far.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.tb.Errorf("keepasshttptest: bad request %s: %v", body, err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, string(body))

	fail := map[string]any{"RequestType": req.RequestType, "Success": false}
	if msg, ok := s.reject[req.RequestType]; ok {
		fail["Error"] = msg
		s.reply(w, fail)
		return
	}

	switch req.RequestType {
	case "associate":
		key, err := crypto.FromB64(req.Key)
		if err != nil || !verify(key, req) {
			s.reply(w, fail)
			return
		}
		s.key = key
		s.replyVerified(w, req.RequestType, map[string]any{"Id": s.id})

	case "test-associate":
		if req.ID != s.id || s.key == nil || !verify(s.key, req) {
			s.reply(w, fail)
			return
		}
		s.replyVerified(w, req.RequestType, map[string]any{"Id": s.id})

	case "get-logins":
		if req.ID != s.id || s.key == nil || !verify(s.key, req) {
			s.reply(w, fail)
			return
		}
		nonce, _ := crypto.FromB64(req.Nonce)
		url, _ := crypto.FromB64(req.URL)
		query, err := crypto.DecryptCBC(url, s.key, nonce)
		if err != nil {
			s.tb.Errorf("keepasshttptest: cannot decrypt Url: %v", err)
		}
		s.queries = append(s.queries, string(query))
		s.replyEntries(w, req.RequestType)

	default:
		fail["Error"] = "unknown request"
		s.reply(w, fail)
	}
}

func verify(key []byte, req Request) bool {
	nonce, err := crypto.FromB64(req.Nonce)
	if err != nil {
		return false
	}
	ct, err := crypto.FromB64(req.Verifier)
	if err != nil {
		return false
	}
	pt, err := crypto.DecryptCBC(ct, key, nonce)
	return err == nil && string(pt) == req.Nonce
}

func (s *Server) encrypt(plaintext string) string {
	ct, err := crypto.EncryptCBC([]byte(plaintext), s.key, ResponseNonce)
	if err != nil {
		s.tb.Fatalf("keepasshttptest: encrypt: %v", err)
	}
	return crypto.B64(ct)
}

func (s *Server) replyVerified(w http.ResponseWriter, requestType string, fields map[string]any) {
	nonce := crypto.B64(ResponseNonce)
	proof := nonce
	if s.badVerifier {
		proof = "not the nonce"
	}
	fields["RequestType"] = requestType
	fields["Success"] = true
	fields["Nonce"] = nonce
	fields["Verifier"] = s.encrypt(proof)
	fields["Version"] = "1.8.4.2"
	s.reply(w, fields)
}

func (s *Server) replyEntries(w http.ResponseWriter, requestType string) {
	entries := make([]map[string]string, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, map[string]string{
			"Login":    s.encrypt(e.Login),
			"Name":     s.encrypt(e.Name),
			"Password": s.encrypt(e.Password),
			"Uuid":     s.encrypt(e.UUID),
		})
	}
	s.replyVerified(w, requestType, map[string]any{"Count": len(entries), "Entries": entries})
}

func (s *Server) reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.tb.Errorf("keepasshttptest: encode: %v", err)
	}
}
