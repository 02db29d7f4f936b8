package keepassxc

import "cmdipass/internal/domain"

const (
	actionChangePublicKeys = "change-public-keys"
	actionAssociate        = "associate"
	actionTestAssociate    = "test-associate"
	actionGetLogins        = "get-logins"
)

type changePublicKeysRequest struct {
	Action    string `json:"action"`
	PublicKey string `json:"publicKey"`
	Nonce     string `json:"nonce"`
	ClientID  string `json:"clientID"`
}

type changePublicKeysResponse struct {
	Action    string `json:"action"`
	PublicKey string `json:"publicKey"`
	Nonce     string `json:"nonce"`
	Version   string `json:"version"`
	Error     string `json:"error"`
}

// sealedRequest is the wire envelope around a sealed payload.
type sealedRequest struct {
	Action   string `json:"action"`
	Message  string `json:"message"`
	Nonce    string `json:"nonce"`
	ClientID string `json:"clientID"`
}

// sealedResponse carries either a sealed message or a plaintext error.
type sealedResponse struct {
	Action    string `json:"action"`
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
	Nonce     string `json:"nonce"`
}

type associateRequest struct {
	Action string `json:"action"`
	Key    string `json:"key"`
}

type associateResponse struct {
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

type testAssociateRequest struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	Key    string `json:"key"`
}

type testAssociateResponse struct {
	ID string `json:"id"`
}

type associatedKey struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type getLoginsRequest struct {
	Action string          `json:"action"`
	URL    string          `json:"url"`
	Keys   []associatedKey `json:"keys,omitempty"`
}

type getLoginsResponse struct {
	Count   int            `json:"count"`
	Entries []domain.Entry `json:"entries"`
}
