package keepassxc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"cmdipass/internal/crypto"
	"cmdipass/internal/domain"
)

// Client speaks KeePassXC-Browser over a SocketTransport.
type Client struct {
	transport domain.SocketTransport
	rand      io.Reader
	logger    *slog.Logger
}

// NewClient returns a client. A nil rand selects crypto/rand and a nil
// logger selects slog.Default().
func NewClient(t domain.SocketTransport, rand io.Reader, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: t, rand: crypto.Random(rand), logger: logger}
}

// NewSecretKey generates the long-lived secret key for a new association.
func (c *Client) NewSecretKey() (domain.X25519Private, error) {
	priv, _, err := crypto.GenerateX25519(c.rand)
	return priv, err
}

// ExchangeKeys sends our public key with a fresh client id and returns a
// session keyed to the server's reply. The exchange is not authenticated;
// TestAssociate or Associate establishes trust.
func (c *Client) ExchangeKeys(ctx context.Context, secret domain.X25519Private) (*Session, error) {
	pub, err := crypto.PublicKey(secret)
	if err != nil {
		return nil, err
	}
	s := &Session{state: StateUnkeyed, secretKey: secret, publicKey: pub}

	idBytes, err := crypto.RandomBytes(c.rand, ClientIDSize)
	if err != nil {
		return nil, err
	}
	copy(s.clientID[:], idBytes)

	nonce, err := crypto.NewBoxNonce(c.rand)
	if err != nil {
		return nil, err
	}

	req := changePublicKeysRequest{
		Action:    actionChangePublicKeys,
		PublicKey: crypto.B64(pub.Slice()),
		Nonce:     crypto.B64(nonce[:]),
		ClientID:  crypto.B64(s.clientID[:]),
	}
	var resp changePublicKeysResponse
	if err := c.exchange(ctx, actionChangePublicKeys, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &domain.ServerRejection{Action: actionChangePublicKeys, Message: resp.Error}
	}

	serverKey, err := crypto.FromB64(resp.PublicKey)
	if err != nil {
		return nil, &domain.ProtocolError{Action: actionChangePublicKeys, Message: "publicKey is not base64", Err: err}
	}
	if len(serverKey) != crypto.BoxKeySize {
		return nil, &domain.ProtocolError{
			Action:  actionChangePublicKeys,
			Message: fmt.Sprintf("server public key is %d bytes, want %d", len(serverKey), crypto.BoxKeySize),
		}
	}
	copy(s.serverKey[:], serverKey)
	s.box = crypto.NewBox(s.serverKey, s.secretKey)
	s.state = StateKeysExchanged

	c.logger.Debug("keepassxc keys exchanged", "server_version", resp.Version)
	return s, nil
}

// Associate registers the session's public key with the open database. The
// user confirms the request in KeePassXC.
func (c *Client) Associate(ctx context.Context, s *Session) (Association, error) {
	if err := s.require(actionAssociate, StateKeysExchanged); err != nil {
		return Association{}, err
	}
	req := associateRequest{Action: actionAssociate, Key: crypto.B64(s.publicKey.Slice())}
	var resp associateResponse
	if err := c.call(ctx, s, actionAssociate, req, &resp); err != nil {
		return Association{}, err
	}
	if resp.ID == "" {
		return Association{}, &domain.ProtocolError{Action: actionAssociate, Message: "response has no id"}
	}

	s.id = resp.ID
	s.state = StateAssociated
	c.logger.Debug("keepassxc associated", "id", resp.ID)
	return Association{SecretKey: s.secretKey, ID: resp.ID}, nil
}

// TestAssociate proves that id is still accepted for our key and makes the
// session Ready. A rejection matches domain.ErrConfigRejected.
func (c *Client) TestAssociate(ctx context.Context, s *Session, id string) error {
	if err := s.require(actionTestAssociate, StateKeysExchanged, StateAssociated); err != nil {
		return err
	}
	req := testAssociateRequest{Action: actionTestAssociate, ID: id, Key: crypto.B64(s.publicKey.Slice())}
	var resp testAssociateResponse
	if err := c.call(ctx, s, actionTestAssociate, req, &resp); err != nil {
		return err
	}

	s.id = id
	s.state = StateReady
	return nil
}

// GetEntries returns the entries KeePassXC matches against query.
func (c *Client) GetEntries(ctx context.Context, s *Session, query string) ([]domain.Entry, error) {
	if err := s.require(actionGetLogins, StateReady); err != nil {
		return nil, err
	}
	req := getLoginsRequest{
		Action: actionGetLogins,
		URL:    query,
		Keys:   []associatedKey{{ID: s.id, Key: crypto.B64(s.publicKey.Slice())}},
	}
	var resp getLoginsResponse
	if err := c.call(ctx, s, actionGetLogins, req, &resp); err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		return []domain.Entry{}, nil
	}
	return resp.Entries, nil
}

// call seals payload, sends it and opens the reply into out.
func (c *Client) call(ctx context.Context, s *Session, action string, payload, out any) error {
	envelope, err := c.seal(s, action, payload)
	if err != nil {
		return err
	}
	var resp sealedResponse
	if err := c.exchange(ctx, action, envelope, &resp); err != nil {
		return err
	}
	plaintext, err := open(s, action, &resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return &domain.ProtocolError{Action: action, Message: "sealed message is not the expected JSON", Err: err}
	}
	return nil
}

func (c *Client) seal(s *Session, action string, payload any) (sealedRequest, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return sealedRequest{}, &domain.ProtocolError{Action: action, Message: "cannot encode request", Err: err}
	}
	nonce, err := crypto.NewBoxNonce(c.rand)
	if err != nil {
		return sealedRequest{}, err
	}
	return sealedRequest{
		Action:   action,
		Message:  crypto.B64(s.box.Seal(plaintext, nonce)),
		Nonce:    crypto.B64(nonce[:]),
		ClientID: crypto.B64(s.clientID[:]),
	}, nil
}

// open unwraps a sealed response. A server error wins over any message.
func open(s *Session, action string, resp *sealedResponse) ([]byte, error) {
	if resp.Error != "" {
		if resp.Action != "" {
			action = resp.Action
		}
		return nil, &domain.ServerRejection{Action: action, Message: resp.Error}
	}
	if resp.Message == "" {
		return nil, &domain.ProtocolError{
			Action:  action,
			Message: "neither message nor error was present in the response",
		}
	}
	if resp.Nonce == "" {
		return nil, &domain.ProtocolError{Action: action, Message: "response has no nonce"}
	}

	rawNonce, err := crypto.FromB64(resp.Nonce)
	if err != nil {
		return nil, &domain.ProtocolError{Action: action, Message: "nonce is not base64", Err: err}
	}
	if len(rawNonce) != crypto.BoxNonceSize {
		return nil, &domain.ProtocolError{
			Action:  action,
			Message: fmt.Sprintf("nonce is %d bytes, want %d", len(rawNonce), crypto.BoxNonceSize),
		}
	}
	var nonce [crypto.BoxNonceSize]byte
	copy(nonce[:], rawNonce)

	sealed, err := crypto.FromB64(resp.Message)
	if err != nil {
		return nil, &domain.ProtocolError{Action: action, Message: "message is not base64", Err: err}
	}
	return s.box.Open(sealed, &nonce)
}

// exchange performs one transport round trip of JSON values.
func (c *Client) exchange(ctx context.Context, action string, req, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return &domain.ProtocolError{Action: action, Message: "cannot encode request", Err: err}
	}
	c.logger.Debug("keepassxc request", "action", action, "bytes", len(body))

	raw, err := c.transport.RoundTrip(ctx, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ProtocolError{Action: action, Message: "response is not the expected JSON", Err: err}
	}
	c.logger.Debug("keepassxc response", "action", action, "bytes", len(raw))
	return nil
}
