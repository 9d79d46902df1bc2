package storage

import (
	"fmt"
	"maps"
	"slices"
)

// BackendFactory creates a SessionStore for one session id.
type BackendFactory func(sessionID string) (SessionStore, error)

// LogFactory opens an ActionLog. The path may be ignored.
type LogFactory func(path string) (ActionLog, error)

// BackendRegistry maps session store names to factories.
var BackendRegistry = map[string]BackendFactory{
	"fs": func(sessionID string) (SessionStore, error) {
		return NewFileSystemBackend(sessionID)
	},
	"memory": func(sessionID string) (SessionStore, error) {
		return NewInMemoryBackend(sessionID)
	},
}

// LogRegistry maps action log backend names to factories.
var LogRegistry = map[string]LogFactory{
	"sqlite": func(path string) (ActionLog, error) {
		if path == "" {
			var err error
			if path, err = DefaultActionLogPath(); err != nil {
				return nil, err
			}
		}
		return OpenSQLiteLog(path)
	},
	"memory": func(string) (ActionLog, error) {
		return NewMemoryLog(), nil
	},
}

// GetBackend creates the named session store.
func GetBackend(name, sessionID string) (SessionStore, error) {
	factory, ok := BackendRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %s (known: %v)", name, slices.Sorted(maps.Keys(BackendRegistry)))
	}
	return factory(sessionID)
}

// OpenLog opens the named action log.
func OpenLog(name, path string) (ActionLog, error) {
	factory, ok := LogRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown action log backend: %s (known: %v)", name, slices.Sorted(maps.Keys(LogRegistry)))
	}
	return factory(path)
}
