package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/rogctl/internal/errors"
	"golang.org/x/sys/unix"
)

// WritePID writes the current process ID to path. It fails with
// ErrAlreadyRunning when path names a live process.
func WritePID(path string) error {
	errFactory := errors.New()

	if running, pid := pidRunning(path); running {
		return errFactory.WithData(errors.ErrAlreadyRunning, pid)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errFactory.Wrap(ErrPIDFile, err)
	}

	err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
	if err != nil {
		return errFactory.Wrap(ErrPIDFile, err)
	}

	return nil
}

// RemovePID removes the PID file.
func RemovePID(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(ErrPIDFile, err)
	}

	return nil
}

// pidRunning reports whether path holds the PID of a live process. Missing
// or unparsable files count as stale.
func pidRunning(path string) (bool, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false, 0
	}

	// EPERM means the process exists but belongs to someone else
	err = unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM, pid
}
