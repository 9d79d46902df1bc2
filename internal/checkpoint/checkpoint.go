// Package checkpoint tracks which part of the action log has already been
// used for training, and the workspace baseline that replay starts from.
package checkpoint

import (
	"context"
	"fmt"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/workspace"
)

// Log is the read side of the action log needed for replay.
type Log interface {
	EntriesAfter(ctx context.Context, seq int64) ([]action.Entry, error)
}

// Trainer consumes replayed entries. Train receives an independent copy of
// the baseline snapshot and returns the workspace reached by the replay.
type Trainer interface {
	Train(ctx context.Context, base workspace.Snapshot, entries []action.Entry) (workspace.Workspace, error)
}

// State is the persisted form of a Tracker.
type State struct {
	LastSequence int64              `json:"last_sequence"`
	Snapshot     workspace.Snapshot `json:"snapshot"`
}

// Result describes one Train call.
type Result struct {
	Trained  bool
	Replayed int
	// From is the marker before the call, To the marker after it.
	From, To int64
	// Workspace is the replayed workspace, nil when nothing was trained.
	Workspace workspace.Workspace
}

// Tracker owns the checkpoint marker and snapshot. The snapshot is never
// aliased with a live workspace.
type Tracker struct {
	last     int64
	snapshot workspace.Snapshot
}

// NewTracker restores a tracker from persisted state.
func NewTracker(s State) *Tracker {
	return &Tracker{last: s.LastSequence, snapshot: s.Snapshot.Clone()}
}

// State returns a copy of the tracker state, for persistence.
func (t *Tracker) State() State {
	return State{LastSequence: t.last, Snapshot: t.snapshot.Clone()}
}

// LastSequence returns the marker: the last sequence id consumed by training.
func (t *Tracker) LastSequence() int64 { return t.last }

// Train replays every entry after the marker against the snapshot. On
// success the marker moves to the last replayed entry and the snapshot is
// replaced by a copy of live, so entries appended while training ran are
// picked up by the next call. On failure the tracker is unchanged.
func (t *Tracker) Train(ctx context.Context, log Log, trainer Trainer, live workspace.Workspace) (Result, error) {
	res := Result{From: t.last, To: t.last}
	entries, err := log.EntriesAfter(ctx, t.last)
	if err != nil {
		return res, fmt.Errorf("checkpoint: read entries after %d: %w", t.last, err)
	}
	if len(entries) == 0 {
		return res, nil
	}
	prev := t.last
	for _, e := range entries {
		if e.Seq <= prev {
			return res, fmt.Errorf("checkpoint: entry sequence %d out of order after %d", e.Seq, prev)
		}
		prev = e.Seq
	}

	replayed, err := trainer.Train(ctx, t.snapshot.Clone(), entries)
	if err != nil {
		return res, fmt.Errorf("checkpoint: train: %w", err)
	}

	t.last = prev
	t.snapshot = live.Snapshot()

	res.Trained = true
	res.Replayed = len(entries)
	res.To = t.last
	res.Workspace = replayed
	return res, nil
}

// Reset rebases the tracker after a session reset. The marker moves to head
// so actions from before the reset are never replayed against the new
// baseline; it never moves backwards.
func (t *Tracker) Reset(head int64, snapshot workspace.Snapshot) {
	t.last = max(t.last, head)
	t.snapshot = snapshot.Clone()
}
