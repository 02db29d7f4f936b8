// Package transport carries requests to the local password manager.
//
// HTTP posts KeePassHTTP messages to a fixed loopback URL and returns the
// whole response body. Socket exchanges KeePassXC-Browser messages over a
// Unix domain socket ($XDG_RUNTIME_DIR/kpxc_server, then /tmp/kpxc_server)
// or, on Windows, the per-user named pipe.
//
// Each call is a single blocking round trip with no retries. Failures are
// returned as *domain.TransportError carrying a hint about the likely
// external cause. Socket responses are framed by JSON value boundaries and
// bounded by MaxResponseSize; they are never silently truncated.
package transport
