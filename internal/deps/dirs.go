package deps

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// CheckWritableDir reports whether dir exists (or can be created) and is
// writable by the current user.
func CheckWritableDir(name, dir string) Status {
	dir = strings.TrimSpace(dir)
	status := Status{Name: name, Command: dir, Description: "Directory must be writable"}
	if dir == "" {
		status.Detail = "directory not configured"
		return status
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			status.Detail = fmt.Sprintf("create %s: %v", dir, mkErr)
			return status
		}
	case err != nil:
		status.Detail = fmt.Sprintf("stat %s: %v", dir, err)
		return status
	case !info.IsDir():
		status.Detail = fmt.Sprintf("%s is not a directory", dir)
		return status
	}

	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		status.Detail = fmt.Sprintf("%s is not writable: %v", dir, err)
		return status
	}
	status.Path = dir
	status.Available = true
	return status
}
