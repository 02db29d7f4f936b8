//go:build windows

package transport

import (
	"context"
	"net"
	"os"

	"github.com/Microsoft/go-winio"
)

// DefaultSocketPath returns the KeePassXC named pipe of the current user.
func DefaultSocketPath() string {
	return socketPath(os.Getenv)
}

func socketPath(getenv func(string) string) string {
	return `\\.\pipe\keepassxc\` + getenv("USERNAME") + `\` + SocketName
}

func dialLocal(ctx context.Context, path string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, path)
}
