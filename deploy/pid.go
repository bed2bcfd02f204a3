// Package deploy holds the hooks deployment tooling relies on.
package deploy

import (
	"os"
	"path/filepath"
	"strconv"
)

// WritePIDFile writes the process id to <dir>/<pid>.pid with the given mode, so that
// deploy scripts can find and signal a running connector.
func WritePIDFile(dir string, mode os.FileMode) (int, error) {
	pid := os.Getpid()
	filename := filepath.Join(dir, strconv.Itoa(pid)+".pid")

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return pid, err
	}
	if _, err := f.WriteString(strconv.Itoa(pid)); err != nil {
		f.Close()
		return pid, err
	}
	if err := f.Close(); err != nil {
		return pid, err
	}
	// umask may have cleared bits of mode
	return pid, os.Chmod(filename, mode)
}
