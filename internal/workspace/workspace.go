// Package workspace holds the editable code buffer that actions mutate.
package workspace

import (
	"context"
	"slices"

	"github.com/joeycumines/clica/internal/action"
)

// Workspace is the environment contract consumed by the interactive core.
// Every mutation of the code happens through Apply.
type Workspace interface {
	// Apply mutates the workspace by exactly one action.
	Apply(ctx context.Context, a action.Action) error
	// SetInstruction replaces the current instruction.
	SetInstruction(ids []action.ID)
	// Observation returns a read-only view of the current state.
	Observation() Observation
	// Snapshot returns an independent copy of the current state.
	Snapshot() Snapshot
}

// Observation is the structured view handed to renderers and agents.
type Observation struct {
	Instruction    string
	InstructionIDs []action.ID
	Code           string
	// Cursor is a rune offset into Code.
	Cursor    int
	TextQueue string
	Output    string
}

// SplitAtCursor returns the code before and after the cursor.
func (o Observation) SplitAtCursor() (string, string) {
	r := []rune(o.Code)
	c := min(max(o.Cursor, 0), len(r))
	return string(r[:c]), string(r[c:])
}

// Snapshot is a value copy of a workspace. It shares no memory with the
// workspace it was taken from, and is safe to persist as JSON.
type Snapshot struct {
	Instruction []action.ID `json:"instruction"`
	Code        string      `json:"code"`
	Cursor      int         `json:"cursor"`
	TextQueue   string      `json:"text_queue"`
	Output      string      `json:"output"`
}

// Clone returns a copy of s with its own instruction slice.
func (s Snapshot) Clone() Snapshot {
	s.Instruction = slices.Clone(s.Instruction)
	return s
}

// Factory builds a fresh workspace, or one restored from a snapshot.
type Factory interface {
	New() Workspace
	Restore(s Snapshot) Workspace
}
