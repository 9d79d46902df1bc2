// Package action defines the discrete unit of change applied to a workspace
// and the record of it kept on the action log.
package action

import (
	"fmt"
	"time"
)

// ID is an opaque discrete action identifier, as produced by a codec.
type ID int

// Source identifies who originated an action.
type Source string

const (
	SourceHuman Source = "human"
	SourceAgent Source = "ai"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceHuman || s == SourceAgent
}

// Kind classifies an action log entry.
type Kind string

const (
	// KindKey is a single action applied to the workspace.
	KindKey Kind = "key"
	// KindSetInstruction replaces the workspace instruction. The entry
	// payload holds the instruction text.
	KindSetInstruction Kind = "set_instruction"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindKey || k == KindSetInstruction
}

// Action is one tagged action.
type Action struct {
	ID     ID
	Source Source
}

func (a Action) String() string {
	return fmt.Sprintf("%s:%d", a.Source, a.ID)
}

// Entry is an immutable action log record. Seq is assigned by the store and
// is strictly increasing for the lifetime of the store.
type Entry struct {
	Seq      int64     `json:"seq"`
	RunID    string    `json:"run_id"`
	Kind     Kind      `json:"kind"`
	Source   Source    `json:"source"`
	ActionID ID        `json:"action_id"`
	Payload  string    `json:"payload"`
	Time     time.Time `json:"time"`
}

// LastSeq returns the sequence id of the final entry, or 0 if there are none.
func LastSeq(entries []Entry) int64 {
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].Seq
}
