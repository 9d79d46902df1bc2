// Package interactive is the terminal controller: a table of states driven
// one input cycle at a time over a shared Session.
package interactive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/agent"
	"github.com/joeycumines/clica/internal/checkpoint"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/eval"
	"github.com/joeycumines/clica/internal/logging"
	"github.com/joeycumines/clica/internal/problem"
	"github.com/joeycumines/clica/internal/storage"
	"github.com/joeycumines/clica/internal/terminal"
	"github.com/joeycumines/clica/internal/workspace"
)

// KeySource yields one logical input event per call, blocking until one is
// available. io.EOF ends the session.
type KeySource interface {
	Next(ctx context.Context) (terminal.Key, error)
}

// Prompter asks for a line of text or a selection from a list.
type Prompter interface {
	// ReadLine returns ok false when the prompt is dismissed.
	ReadLine(ctx context.Context, title, initial string) (line string, ok bool, err error)
	// Select returns no items when the prompt is dismissed.
	Select(ctx context.Context, title string, items []string, multi bool) ([]string, error)
}

// Display shows a complete view.
type Display interface {
	Draw(view string) error
}

// ShellMode switches the terminal out of raw mode around work that prints
// on its own, and back again. Writes go to the terminal as plain output.
type ShellMode interface {
	io.Writer
	Suspend() (bool, error)
	Resume(wasRaw bool) error
}

// Evaluator runs one evaluation item, never failing the caller.
type Evaluator interface {
	Safely(ctx context.Context, path string) eval.Result
}

// Settings are the configured paths and values the states consult.
type Settings struct {
	SaveDir       string
	EvalDir       string
	InitialReward int
	// ConfigPath, if set, receives model.last-loaded after a save or load.
	ConfigPath string
}

// Session is the mutable context shared by every state. Only the running
// state's execute function mutates it.
type Session struct {
	Vocab     *codec.Vocabulary
	Factory   workspace.Factory
	Workspace workspace.Workspace
	Agent     agent.Agent
	Log       storage.ActionLog
	Tracker   *checkpoint.Tracker
	Buffer    *Buffer

	Reward      int
	LoadedModel string

	Keys      KeySource
	Prompter  Prompter
	Display   Display
	Shell     ShellMode
	Generator problem.Generator
	Solver    problem.Solver
	Evaluator Evaluator
	Settings  Settings

	// Store and Record persist the session between runs. Both are optional.
	Store  storage.SessionStore
	Record *storage.Session

	Logger *slog.Logger
	// Ring, if set, supplies the latest warning for the status line.
	Ring  *logging.RingHandler
	RunID string
	Rand  *rand.Rand

	// notice is a one-shot result message shown on the menu.
	notice string
}

// apply applies one action to the workspace and records it.
func (s *Session) apply(ctx context.Context, a action.Action) error {
	if err := s.Workspace.Apply(ctx, a); err != nil {
		return fmt.Errorf("apply %s: %w", a, err)
	}
	_, err := s.Log.Append(ctx, action.Entry{
		RunID:    s.RunID,
		Kind:     action.KindKey,
		Source:   a.Source,
		ActionID: a.ID,
		Payload:  s.Vocab.Decode(a.ID),
	})
	if err != nil {
		return fmt.Errorf("record %s: %w", a, err)
	}
	return nil
}

// setInstruction encodes text, sets it as the instruction and records it.
func (s *Session) setInstruction(ctx context.Context, text string, src action.Source) error {
	s.Workspace.SetInstruction(s.Vocab.Encode(text))
	_, err := s.Log.Append(ctx, action.Entry{
		RunID:   s.RunID,
		Kind:    action.KindSetInstruction,
		Source:  src,
		Payload: text,
	})
	if err != nil {
		return fmt.Errorf("record instruction: %w", err)
	}
	s.Logger.Info("instruction set", "source", src, "length", len(text))
	return nil
}

// reset replaces the workspace and zeroes the session-local counters. The
// loaded model survives, and the tracker is rebased on the log head.
func (s *Session) reset(ctx context.Context) error {
	head, err := s.Log.LastSequence(ctx)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.Workspace = s.Factory.New()
	s.Reward = s.Settings.InitialReward
	s.Buffer.Reset()
	s.Tracker.Reset(head, s.Workspace.Snapshot())
	return nil
}

// persist saves the session record, if there is a store.
func (s *Session) persist() error {
	if s.Store == nil || s.Record == nil {
		return nil
	}
	s.Record.UpdatedAt = time.Now()
	s.Record.Workspace = s.Workspace.Snapshot()
	s.Record.Reward = s.Reward
	s.Record.LoadedModel = s.LoadedModel
	s.Record.Checkpoint = s.Tracker.State()
	if err := s.Store.SaveSession(s.Record); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Restore loads the persisted parts of rec into s.
func (s *Session) Restore(rec *storage.Session) {
	s.Record = rec
	s.Workspace = s.Factory.Restore(rec.Workspace)
	s.Reward = rec.Reward
	s.LoadedModel = rec.LoadedModel
	s.Tracker = checkpoint.NewTracker(rec.Checkpoint)
}

func (s *Session) draw(view string) error {
	if s.Display == nil {
		return nil
	}
	return s.Display.Draw(view)
}
