package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cmdipass/internal/domain"
)

// DefaultKeePassHTTPURL is where the KeePassHTTP plugin listens by default.
const DefaultKeePassHTTPURL = "http://localhost:19455"

const keePassHint = "make sure KeePass is running and unlocked"

// HTTP posts KeePassHTTP requests to a single fixed endpoint.
type HTTP struct {
	URL    string
	HTTP   *http.Client
	Logger *slog.Logger
}

// NewHTTP returns an HTTP transport for url. A nil client or logger falls
// back to http.DefaultClient and slog.Default().
func NewHTTP(url string, client *http.Client, logger *slog.Logger) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{URL: url, HTTP: client, Logger: logger}
}

var _ domain.HTTPTransport = (*HTTP)(nil)

// Post sends body as a JSON POST and returns the full response body. Connect
// failures and non-2xx statuses are returned as *domain.TransportError.
func (c *HTTP) Post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail("post", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.Logger.Debug("keepasshttp request", "url", c.URL, "bytes", len(body))
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, c.fail("post", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, c.fail("post", fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, c.fail("read", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, c.fail("read", fmt.Errorf("response exceeds %d bytes", MaxResponseSize))
	}
	c.Logger.Debug("keepasshttp response", "status", resp.StatusCode, "bytes", len(data))
	return data, nil
}

func (c *HTTP) fail(op string, err error) error {
	return &domain.TransportError{Op: op, Endpoint: c.URL, Hint: keePassHint, Err: err}
}
