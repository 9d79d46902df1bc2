package storage

import (
	"time"

	"github.com/joeycumines/clica/internal/checkpoint"
	"github.com/joeycumines/clica/internal/workspace"
)

const currentSchemaVersion = "1"

// Session is the persisted state of one interactive session.
type Session struct {
	Version     string             `json:"version"`
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Workspace   workspace.Snapshot `json:"workspace"`
	Reward      int                `json:"reward"`
	LoadedModel string             `json:"loaded_model,omitempty"`
	Checkpoint  checkpoint.State   `json:"checkpoint"`
}

// SessionStore persists sessions.
type SessionStore interface {
	// LoadSession returns (nil, nil) if the session does not exist.
	LoadSession(sessionID string) (*Session, error)

	// SaveSession atomically persists the whole session.
	SaveSession(session *Session) error

	// Close releases held resources such as the session lock.
	Close() error
}
