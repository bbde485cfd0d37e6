//go:build windows

package filelock

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockBytes is the size of the locked region at offset 0.
const lockBytes = 1

func lockFile(f *os.File) error {
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK,
		0, lockBytes, 0, new(windows.Overlapped))
}

func unlockFile(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, lockBytes, 0, new(windows.Overlapped))
}
