package storage

import (
	"errors"
	"fmt"
	"os"
)

// ErrWouldBlock is returned when another process holds the lock.
var ErrWouldBlock = errors.New("file lock would block")

// lockFor acquires the lock file for what, mapping contention to a
// readable error that still matches ErrWouldBlock.
func lockFor(path, what string) (*os.File, error) {
	f, err := acquireFileLock(path)
	if err != nil {
		if errors.Is(err, ErrWouldBlock) {
			return nil, fmt.Errorf("%s is in use by another process (%s): %w", what, path, err)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", what, err)
	}
	return f, nil
}
