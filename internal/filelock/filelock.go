// Package filelock provides an exclusive advisory lock on a file, shared by
// every taskt process writing the same store.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock blocks until it holds an exclusive lock on path, creating the file
// and its directory when missing. The returned func releases the lock.
func Lock(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // lock path from config
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return func() error {
		uerr := unlockFile(f)
		cerr := f.Close()
		if uerr != nil {
			return fmt.Errorf("unlocking %s: %w", path, uerr)
		}
		return cerr
	}, nil
}
