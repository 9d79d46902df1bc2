package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

const sessionFileSuffix = ".session.json"

// SessionInfo summarises one session file.
type SessionInfo struct {
	ID          string    `json:"id"`
	UpdatedAt   time.Time `json:"updated_at"`
	Reward      int       `json:"reward"`
	LoadedModel string    `json:"loaded_model,omitempty"`
	Size        int64     `json:"size"`
	// Active is true while a running process holds the session lock.
	Active bool `json:"active"`
}

// ScanSessions lists the stored sessions, most recently updated first.
// Unreadable session files are listed with what the directory reveals.
func ScanSessions() ([]SessionInfo, error) {
	dir, err := sessionDirectory()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}
	var infos []SessionInfo
	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), sessionFileSuffix)
		if !ok || entry.IsDir() {
			continue
		}
		info := SessionInfo{ID: id}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
			info.UpdatedAt = fi.ModTime()
		}
		if path, err := sessionFilePath(id); err == nil {
			if data, err := os.ReadFile(path); err == nil {
				var s Session
				if json.Unmarshal(data, &s) == nil {
					info.UpdatedAt = s.UpdatedAt
					info.Reward = s.Reward
					info.LoadedModel = s.LoadedModel
				}
			}
		}
		info.Active = sessionActive(id)
		infos = append(infos, info)
	}
	slices.SortStableFunc(infos, func(a, b SessionInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return infos, nil
}

func sessionActive(id string) bool {
	lockPath, err := sessionLockFilePath(id)
	if err != nil {
		return false
	}
	if _, err := os.Stat(lockPath); err != nil {
		return false
	}
	f, err := acquireFileLock(lockPath)
	if err != nil {
		return errors.Is(err, ErrWouldBlock)
	}
	_ = releaseFileLock(f)
	return false
}

// DeleteSession removes a session file. It refuses while the session is in
// use.
func DeleteSession(id string) error {
	path, err := sessionFilePath(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session %s not found", id)
		}
		return err
	}
	lockPath, err := sessionLockFilePath(id)
	if err != nil {
		return err
	}
	lock, err := lockFor(lockPath, "session "+id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		_ = lock.Close()
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return releaseFileLock(lock)
}
