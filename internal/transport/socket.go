package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"cmdipass/internal/domain"
)

// MaxResponseSize bounds a single response read. KeePassXC replies are a
// few kilobytes; the limit only guards against a runaway peer.
const MaxResponseSize int64 = 1 << 20

// SocketName is the KeePassXC-Browser endpoint name.
const SocketName = "kpxc_server"

const keePassXCHint = "make sure KeePassXC is running with browser integration enabled"

// Socket talks to KeePassXC over its local channel: a Unix domain socket,
// or a named pipe on Windows. Every RoundTrip uses a fresh connection.
type Socket struct {
	Path   string
	Logger *slog.Logger

	dial func(ctx context.Context, path string) (net.Conn, error)
}

// NewSocket returns a transport for path; an empty path selects
// DefaultSocketPath().
func NewSocket(path string, logger *slog.Logger) *Socket {
	if path == "" {
		path = DefaultSocketPath()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Socket{Path: path, Logger: logger, dial: dialLocal}
}

var _ domain.SocketTransport = (*Socket)(nil)

// RoundTrip writes request and reads back exactly one JSON value. The read
// ends as soon as that value is complete, so replies split across several
// packets are reassembled and trailing data is left unread.
func (s *Socket) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	conn, err := s.dial(ctx, s.Path)
	if err != nil {
		return nil, s.fail("dial", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Cancellation unblocks a pending read or write.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	s.Logger.Debug("keepassxc request", "path", s.Path, "bytes", len(request))
	if _, err := conn.Write(request); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, s.fail("write", ctxErr)
		}
		return nil, s.fail("write", err)
	}

	response, err := readMessage(conn)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, s.fail("read", ctxErr)
		}
		var protoErr *domain.ProtocolError
		if errors.As(err, &protoErr) {
			return nil, err
		}
		return nil, s.fail("read", err)
	}
	s.Logger.Debug("keepassxc response", "path", s.Path, "bytes", len(response))
	return response, nil
}

// readMessage decodes one JSON value from r, reading no more than
// MaxResponseSize bytes.
func readMessage(r io.Reader) ([]byte, error) {
	limited := &io.LimitedReader{R: r, N: MaxResponseSize + 1}
	var raw json.RawMessage
	if err := json.NewDecoder(limited).Decode(&raw); err != nil {
		switch {
		case limited.N <= 0:
			return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
		case errors.Is(err, io.EOF):
			return nil, errors.New("connection closed before a response arrived")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, errors.New("connection closed mid-response")
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &domain.ProtocolError{Message: "response is not JSON", Err: err}
		}
		return nil, err
	}
	return raw, nil
}

func (s *Socket) fail(op string, err error) error {
	return &domain.TransportError{Op: op, Endpoint: s.Path, Hint: keePassXCHint, Err: err}
}
