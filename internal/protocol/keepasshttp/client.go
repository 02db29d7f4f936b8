package keepasshttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
)

// Association is the key and id shared with a KeePassHTTP server.
type Association struct {
	Key domain.SymmetricKey
	ID  string
}

// Client speaks KeePassHTTP over an HTTPTransport. It keeps no session
// state; every call uses a fresh nonce.
type Client struct {
	transport domain.HTTPTransport
	rand      io.Reader
	logger    *slog.Logger
}

// NewClient returns a client. A nil rand selects crypto/rand and a nil
// logger selects slog.Default().
func NewClient(t domain.HTTPTransport, rand io.Reader, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: t, rand: crypto.Random(rand), logger: logger}
}

// Associate registers a new random key with the server.
func (c *Client) Associate(ctx context.Context) (Association, error) {
	keyBytes, err := crypto.RandomBytes(c.rand, crypto.AESKeySize)
	if err != nil {
		return Association{}, err
	}
	var key domain.SymmetricKey
	copy(key[:], keyBytes)

	nonce, verifier, err := c.freshNonce(key)
	if err != nil {
		return Association{}, err
	}

	req := associateRequest{
		RequestType: actionAssociate,
		Key:         crypto.B64(key.Slice()),
		Nonce:       crypto.B64(nonce),
		Verifier:    verifier,
	}
	resp, err := c.roundTrip(ctx, actionAssociate, key, req)
	if err != nil {
		return Association{}, err
	}
	if resp.ID == "" {
		return Association{}, &domain.ProtocolError{Action: actionAssociate, Message: "response has no Id"}
	}

	c.logger.Debug("keepasshttp associated", "id", resp.ID)
	return Association{Key: key, ID: resp.ID}, nil
}

// TestAssociate checks that the server still accepts a. A rejection matches
// domain.ErrConfigRejected.
func (c *Client) TestAssociate(ctx context.Context, a Association) error {
	nonce, verifier, err := c.freshNonce(a.Key)
	if err != nil {
		return err
	}
	req := testAssociateRequest{
		RequestType:   actionTestAssociate,
		TriggerUnlock: false,
		ID:            a.ID,
		Nonce:         crypto.B64(nonce),
		Verifier:      verifier,
	}
	_, err = c.roundTrip(ctx, actionTestAssociate, a.Key, req)
	return err
}

// GetLogins returns the entries matching query, decrypted.
func (c *Client) GetLogins(ctx context.Context, a Association, query string) ([]domain.Entry, error) {
	nonce, verifier, err := c.freshNonce(a.Key)
	if err != nil {
		return nil, err
	}
	url, err := crypto.EncryptCBC([]byte(query), a.Key.Slice(), nonce)
	if err != nil {
		return nil, err
	}

	req := getLoginsRequest{
		RequestType: actionGetLogins,
		ID:          a.ID,
		Nonce:       crypto.B64(nonce),
		Verifier:    verifier,
		URL:         crypto.B64(url),
	}
	resp, err := c.roundTrip(ctx, actionGetLogins, a.Key, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Entries) == 0 {
		return []domain.Entry{}, nil
	}

	respNonce, err := decodeNonce(actionGetLogins, resp.Nonce)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.Entry, 0, len(resp.Entries))
	for _, raw := range resp.Entries {
		e, err := decryptEntry(raw, a.Key.Slice(), respNonce)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (c *Client) freshNonce(key domain.SymmetricKey) (nonce []byte, verifier string, err error) {
	nonce, err = crypto.RandomBytes(c.rand, crypto.IVSize)
	if err != nil {
		return nil, "", err
	}
	verifier, err = newVerifier(key.Slice(), nonce)
	if err != nil {
		return nil, "", err
	}
	return nonce, verifier, nil
}

// roundTrip posts req and decodes the response. Success=false becomes a
// ServerRejection carrying the server's Error text.
func (c *Client) roundTrip(ctx context.Context, action string, key domain.SymmetricKey, req any) (*response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.ProtocolError{Action: action, Message: "cannot encode request", Err: err}
	}

	c.logger.Debug("keepasshttp request", "action", action)
	raw, err := c.transport.Post(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &domain.ProtocolError{Action: action, Message: "response is not valid JSON", Err: err}
	}
	c.logger.Debug("keepasshttp response", "action", action, "success", resp.Success, "entries", len(resp.Entries))

	if !resp.Success {
		return nil, &domain.ServerRejection{Action: action, Message: resp.Error}
	}
	if err := checkVerifier(action, key.Slice(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func decryptEntry(raw rawEntry, key, nonce []byte) (domain.Entry, error) {
	var (
		e   domain.Entry
		err error
	)
	fields := []struct {
		name string
		in   string
		out  *string
	}{
		{"Name", raw.Name, &e.Name},
		{"Login", raw.Login, &e.Login},
		{"Password", raw.Password, &e.Password},
		{"Uuid", raw.UUID, &e.UUID},
	}
	for _, f := range fields {
		if *f.out, err = decryptField(f.name, f.in, key, nonce); err != nil {
			return domain.Entry{}, err
		}
	}
	return e, nil
}

func decryptField(name, value string, key, nonce []byte) (string, error) {
	if value == "" {
		return "", nil
	}
	ct, err := crypto.FromB64(value)
	if err != nil {
		return "", &domain.ProtocolError{Action: actionGetLogins, Message: "entry " + name + " is not base64", Err: err}
	}
	pt, err := crypto.DecryptCBC(ct, key, nonce)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
