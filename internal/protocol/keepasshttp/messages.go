package keepasshttp

const (
	actionAssociate     = "associate"
	actionTestAssociate = "test-associate"
	actionGetLogins     = "get-logins"
)

type associateRequest struct {
	RequestType string `json:"RequestType"`
	Key         string `json:"Key"`
	Nonce       string `json:"Nonce"`
	Verifier    string `json:"Verifier"`
}

type testAssociateRequest struct {
	RequestType   string `json:"RequestType"`
	TriggerUnlock bool   `json:"TriggerUnlock"`
	ID            string `json:"Id"`
	Nonce         string `json:"Nonce"`
	Verifier      string `json:"Verifier"`
}

type getLoginsRequest struct {
	RequestType string `json:"RequestType"`
	ID          string `json:"Id"`
	Nonce       string `json:"Nonce"`
	Verifier    string `json:"Verifier"`
	URL         string `json:"Url"`
}

// response is the union of every KeePassHTTP response shape.
type response struct {
	RequestType string     `json:"RequestType"`
	Success     bool       `json:"Success"`
	Error       string     `json:"Error,omitempty"`
	ID          string     `json:"Id,omitempty"`
	Nonce       string     `json:"Nonce,omitempty"`
	Verifier    string     `json:"Verifier,omitempty"`
	Version     string     `json:"Version,omitempty"`
	Hash        string     `json:"Hash,omitempty"`
	Count       int        `json:"Count,omitempty"`
	Entries     []rawEntry `json:"Entries,omitempty"`
}

// rawEntry holds base64 ciphertexts under the response nonce.
type rawEntry struct {
	Login    string `json:"Login"`
	Name     string `json:"Name"`
	Password string `json:"Password"`
	UUID     string `json:"Uuid"`
}
