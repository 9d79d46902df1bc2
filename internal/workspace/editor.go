package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
)

// Editor is the reference Workspace. Text actions accumulate in a text
// queue which the commit action inserts at the cursor; command actions move
// the cursor, delete, or run the code.
type Editor struct {
	vocab       *codec.Vocabulary
	runner      Runner
	logger      *slog.Logger
	instruction []action.ID
	code        []rune
	cursor      int
	queue       []rune
	output      string
}

// EditorFactory builds Editors sharing one vocabulary and runner.
type EditorFactory struct {
	Vocab  *codec.Vocabulary
	Runner Runner
	Logger *slog.Logger
}

// New implements Factory.
func (f EditorFactory) New() Workspace {
	return NewEditor(f.Vocab, f.Runner, f.Logger)
}

// Restore implements Factory.
func (f EditorFactory) Restore(s Snapshot) Workspace {
	e := NewEditor(f.Vocab, f.Runner, f.Logger)
	e.restore(s)
	return e
}

// NewEditor returns an empty editor. A nil runner disables code execution.
func NewEditor(vocab *codec.Vocabulary, runner Runner, logger *slog.Logger) *Editor {
	if runner == nil {
		runner = NopRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{vocab: vocab, runner: runner, logger: logger}
}

func (e *Editor) restore(s Snapshot) {
	e.instruction = slices.Clone(s.Instruction)
	e.code = []rune(s.Code)
	e.cursor = min(max(s.Cursor, 0), len(e.code))
	e.queue = []rune(s.TextQueue)
	e.output = s.Output
}

// Apply implements Workspace.
func (e *Editor) Apply(ctx context.Context, a action.Action) error {
	if r, ok := e.vocab.Rune(a.ID); ok {
		e.queue = append(e.queue, r)
		return nil
	}
	cmd, ok := e.vocab.Command(a.ID)
	if !ok {
		return fmt.Errorf("workspace: invalid action id %d", a.ID)
	}
	switch cmd {
	case codec.Commit:
		e.code = slices.Insert(e.code, e.cursor, e.queue...)
		e.cursor += len(e.queue)
		e.queue = e.queue[:0]
	case codec.Left:
		if e.cursor > 0 {
			e.cursor--
		}
	case codec.Right:
		if e.cursor < len(e.code) {
			e.cursor++
		}
	case codec.Up:
		e.moveLine(-1)
	case codec.Down:
		e.moveLine(1)
	case codec.Home:
		e.cursor = e.lineStart(e.cursor)
	case codec.End:
		e.cursor = e.lineEnd(e.cursor)
	case codec.Backspace:
		if len(e.queue) > 0 {
			e.queue = e.queue[:len(e.queue)-1]
		} else if e.cursor > 0 {
			e.code = slices.Delete(e.code, e.cursor-1, e.cursor)
			e.cursor--
		}
	case codec.Delete:
		if e.cursor < len(e.code) {
			e.code = slices.Delete(e.code, e.cursor, e.cursor+1)
		}
	case codec.Run:
		out, err := e.runner.Run(ctx, string(e.code))
		if err != nil {
			e.logger.Debug("code execution failed", "error", err)
			out += err.Error()
		}
		e.output = out
	case codec.EndOfTurn:
	}
	return nil
}

// SetInstruction implements Workspace.
func (e *Editor) SetInstruction(ids []action.ID) {
	e.instruction = slices.Clone(ids)
}

// Observation implements Workspace.
func (e *Editor) Observation() Observation {
	return Observation{
		Instruction:    e.vocab.Text(e.instruction),
		InstructionIDs: slices.Clone(e.instruction),
		Code:           string(e.code),
		Cursor:         e.cursor,
		TextQueue:      string(e.queue),
		Output:         e.output,
	}
}

// Snapshot implements Workspace.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		Instruction: slices.Clone(e.instruction),
		Code:        string(e.code),
		Cursor:      e.cursor,
		TextQueue:   string(e.queue),
		Output:      e.output,
	}
}

func (e *Editor) lineStart(pos int) int {
	for pos > 0 && e.code[pos-1] != '\n' {
		pos--
	}
	return pos
}

func (e *Editor) lineEnd(pos int) int {
	for pos < len(e.code) && e.code[pos] != '\n' {
		pos++
	}
	return pos
}

// moveLine moves the cursor dir lines, keeping the column where possible.
func (e *Editor) moveLine(dir int) {
	start := e.lineStart(e.cursor)
	col := e.cursor - start
	var target int
	if dir < 0 {
		if start == 0 {
			return
		}
		target = e.lineStart(start - 1)
	} else {
		end := e.lineEnd(e.cursor)
		if end == len(e.code) {
			return
		}
		target = end + 1
	}
	e.cursor = min(target+col, e.lineEnd(target))
}

var (
	_ Workspace = (*Editor)(nil)
	_ Factory   = EditorFactory{}
)
