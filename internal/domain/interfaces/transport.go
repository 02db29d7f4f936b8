package interfaces

import "context"

// HTTPTransport performs one JSON POST round trip against the KeePassHTTP
// endpoint and returns the raw response body.
type HTTPTransport interface {
	Post(ctx context.Context, body []byte) ([]byte, error)
}

// SocketTransport performs one request/response exchange over the local
// KeePassXC channel and returns exactly one JSON message.
type SocketTransport interface {
	RoundTrip(ctx context.Context, request []byte) ([]byte, error)
}
