package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Path functions are variables so tests can redirect them away from the
// user's config directory.
var (
	dataDirectory       = DataDirectory
	sessionDirectory    = SessionDirectory
	sessionFilePath     = SessionFilePath
	sessionLockFilePath = SessionLockFilePath
)

// SetTestPaths points every storage path at dir. Tests only.
func SetTestPaths(dir string) {
	dataDirectory = func() (string, error) { return dir, nil }
	sessionDirectory = func() (string, error) { return filepath.Join(dir, "sessions"), nil }
	sessionFilePath = func(id string) (string, error) {
		return filepath.Join(dir, "sessions", id+".session.json"), nil
	}
	sessionLockFilePath = func(id string) (string, error) {
		return filepath.Join(dir, "sessions", id+".session.lock"), nil
	}
}

// ResetPaths restores the default path functions. Tests only.
func ResetPaths() {
	dataDirectory = DataDirectory
	sessionDirectory = SessionDirectory
	sessionFilePath = SessionFilePath
	sessionLockFilePath = SessionLockFilePath
}

// DataDirectory returns {UserConfigDir}/clica.
func DataDirectory() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "clica"), nil
}

// SessionDirectory returns the directory holding session files.
func SessionDirectory() (string, error) {
	dir, err := dataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// SessionFilePath returns {SessionDirectory}/{id}.session.json.
func SessionFilePath(sessionID string) (string, error) {
	dir, err := sessionDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionID+".session.json"), nil
}

// SessionLockFilePath returns {SessionDirectory}/{id}.session.lock.
func SessionLockFilePath(sessionID string) (string, error) {
	dir, err := sessionDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionID+".session.lock"), nil
}

// DefaultActionLogPath returns {DataDirectory}/actions.db.
func DefaultActionLogPath() (string, error) {
	dir, err := dataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "actions.db"), nil
}
