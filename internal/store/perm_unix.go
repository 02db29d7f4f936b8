//go:build !windows

package store

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"

	"cmdipass/internal/domain"
)

// checkPermissions refuses a file that grants any access to group or others,
// or that belongs to another user.
func checkPermissions(f *os.File, path string, _ *slog.Logger) error {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return &domain.ConfigError{Path: path, Message: "cannot stat", Err: err}
	}

	mode := uint32(st.Mode) & 0o7777
	if mode&0o077 != 0 {
		return &domain.ConfigError{
			Path: path,
			Message: fmt.Sprintf(
				"permissions %04o are too open; the association file must not be accessible to others. Try `chmod 0600 '%s'`",
				mode, path),
		}
	}
	if uid := os.Getuid(); uid >= 0 && int64(st.Uid) != int64(uid) {
		return &domain.ConfigError{
			Path:    path,
			Message: fmt.Sprintf("file is owned by uid %d, not the current user (uid %d)", st.Uid, uid),
		}
	}
	return nil
}
