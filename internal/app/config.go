package app

import (
	"io"
	"log/slog"
	"net/http"

	"cmdipass/internal/domain"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	StorePath string             // association file; empty selects $CMDIPASS_CONFIG or ~/.cmdipass
	Backend   domain.BackendKind // protocol to speak
	URL       string             // KeePassHTTP endpoint, e.g. http://localhost:19455
	Socket    string             // KeePassXC socket or pipe; empty selects the platform default
	HTTP      *http.Client       // optional; defaults to a client with a short timeout
	Rand      io.Reader          // optional; defaults to crypto/rand
	Logger    *slog.Logger       // optional; defaults to slog.Default()
	Notices   io.Writer          // first-run notices, usually stderr
}
