//go:build windows

package storage

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func replaceFile(from, to string) error {
	src, err := windows.UTF16PtrFromString(from)
	if err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	dst, err := windows.UTF16PtrFromString(to)
	if err != nil {
		return fmt.Errorf("rename %s: %w", to, err)
	}
	return windows.MoveFileEx(src, dst, windows.MOVEFILE_REPLACE_EXISTING)
}

var acquireFileLock = func(path string) (*os.File, error) {
	lockFile, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	var ol windows.Overlapped
	err = windows.LockFileEx(windows.Handle(lockFile.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &ol)
	if err != nil {
		lockFile.Close()
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return nil, ErrWouldBlock
		}
		return nil, fmt.Errorf("LockFileEx failed: %w", err)
	}
	return lockFile, nil
}

func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}
	path := lockFile.Name()
	var ol windows.Overlapped
	err1 := windows.UnlockFileEx(windows.Handle(lockFile.Fd()), 0, 1, 0, &ol)
	err2 := lockFile.Close()
	err3 := os.Remove(path)
	if os.IsNotExist(err3) {
		err3 = nil
	}
	return errors.Join(err1, err2, err3)
}
