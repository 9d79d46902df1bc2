package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FileSystemBackend stores one JSON file per session and holds an
// exclusive lock on that session while open.
type FileSystemBackend struct {
	sessionID string
	lockFile  *os.File
}

// NewFileSystemBackend opens the store for sessionID and locks it.
func NewFileSystemBackend(sessionID string) (*FileSystemBackend, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}
	sessionDir, err := sessionDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get session directory: %w", err)
	}
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	lockPath, err := sessionLockFilePath(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lock file path: %w", err)
	}
	lockFile, err := lockFor(lockPath, "session "+sessionID)
	if err != nil {
		return nil, err
	}
	return &FileSystemBackend{sessionID: sessionID, lockFile: lockFile}, nil
}

func (b *FileSystemBackend) checkID(sessionID string) error {
	if sessionID != b.sessionID {
		return fmt.Errorf("session ID mismatch: backend is locked for %q, got %q", b.sessionID, sessionID)
	}
	return nil
}

// LoadSession implements SessionStore.
func (b *FileSystemBackend) LoadSession(sessionID string) (*Session, error) {
	if err := b.checkID(sessionID); err != nil {
		return nil, err
	}
	path, err := sessionFilePath(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session file path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// SaveSession implements SessionStore.
func (b *FileSystemBackend) SaveSession(s *Session) error {
	if err := b.checkID(s.ID); err != nil {
		return err
	}
	path, err := sessionFilePath(s.ID)
	if err != nil {
		return fmt.Errorf("failed to get session file path: %w", err)
	}
	s.Version = currentSchemaVersion
	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Close releases the session lock.
func (b *FileSystemBackend) Close() error {
	if b.lockFile == nil {
		return nil
	}
	if err := releaseFileLock(b.lockFile); err != nil {
		return fmt.Errorf("failed to release session lock: %w", err)
	}
	b.lockFile = nil
	return nil
}

var _ SessionStore = (*FileSystemBackend)(nil)
