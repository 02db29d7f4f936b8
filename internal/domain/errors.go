package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrTransport is matched by every TransportError.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol is matched by every ProtocolError.
	ErrProtocol = errors.New("protocol error")

	// ErrCrypto is matched by every CryptoError.
	ErrCrypto = errors.New("cryptographic failure")

	// ErrServerRejected is matched by every ServerRejection.
	ErrServerRejected = errors.New("request rejected by server")

	// ErrAssociationRejected is matched when the server refuses a new association.
	ErrAssociationRejected = errors.New("association rejected by server")

	// ErrConfigRejected is matched when the server no longer accepts a stored
	// association. The user should open the right database or re-associate.
	ErrConfigRejected = errors.New("stored association rejected by server")

	// ErrConfig is matched by every ConfigError.
	ErrConfig = errors.New("configuration error")
)

// TransportError reports a connect, I/O or HTTP status failure. It is always
// fatal for the current invocation.
type TransportError struct {
	Op       string // "post", "dial", "write", "read"
	Endpoint string
	Hint     string // likely external cause, shown to the user
	Err      error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Endpoint, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolError reports a malformed or unexpected message.
type ProtocolError struct {
	Action  string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	prefix := "protocol error"
	if e.Action != "" {
		prefix = fmt.Sprintf("protocol error in %s", e.Action)
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *ProtocolError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// CryptoError reports a padding, size or authentication failure. It must
// never be ignored.
type CryptoError struct {
	Op      string // "encrypt", "decrypt", "open", ...
	Message string
	Err     error
}

func (e *CryptoError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *CryptoError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *CryptoError) Is(target error) bool { return target == ErrCrypto }

// ServerRejection carries the failure text reported by the server.
type ServerRejection struct {
	Action  string
	Message string
}

func (e *ServerRejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s action failed", e.Action)
	}
	return fmt.Sprintf("%s action failed: %s", e.Action, e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *ServerRejection) Is(target error) bool {
	switch target {
	case ErrServerRejected:
		return true
	case ErrAssociationRejected:
		return e.Action == "associate"
	case ErrConfigRejected:
		return e.Action == "test-associate"
	}
	return false
}

// ConfigError reports a missing, invalid or insecurely permissioned
// association store.
type ConfigError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("config %q: %s", e.Path, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is implements errors.Is for sentinel error matching.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
