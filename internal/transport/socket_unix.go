//go:build !windows

package transport

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

// DefaultSocketPath returns $XDG_RUNTIME_DIR/kpxc_server, falling back to
// /tmp/kpxc_server.
func DefaultSocketPath() string {
	return socketPath(os.Getenv)
}

func socketPath(getenv func(string) string) string {
	if dir := getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, SocketName)
	}
	return filepath.Join("/tmp", SocketName)
}

func dialLocal(ctx context.Context, path string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
