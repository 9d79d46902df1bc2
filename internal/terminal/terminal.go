package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when raw mode is requested on a non-terminal.
var ErrNotTerminal = errors.New("input is not a terminal")

// Terminal manages the raw mode of the controlling terminal. Suspend and
// Resume switch back to the cooked mode for work that prints normally, such
// as evaluation runs.
type Terminal struct {
	In  *os.File
	Out io.Writer

	saved *term.State
}

// New returns a Terminal over in and out. Nothing changes until EnterRaw.
func New(in *os.File, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

// IsTerminal reports whether In is a terminal.
func (t *Terminal) IsTerminal() bool {
	return t.In != nil && term.IsTerminal(int(t.In.Fd()))
}

// EnterRaw puts the terminal into raw mode. It is a no-op when In is not a
// terminal, so piped input still works.
func (t *Terminal) EnterRaw() error {
	if t.saved != nil || !t.IsTerminal() {
		return nil
	}
	state, err := term.MakeRaw(int(t.In.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	t.saved = state
	return nil
}

// Restore returns the terminal to the mode it had before EnterRaw.
func (t *Terminal) Restore() error {
	if t.saved == nil {
		return nil
	}
	state := t.saved
	t.saved = nil
	if err := term.Restore(int(t.In.Fd()), state); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}

// Suspend leaves raw mode and reports whether Resume should re-enter it.
func (t *Terminal) Suspend() (bool, error) {
	if t.saved == nil {
		return false, nil
	}
	return true, t.Restore()
}

// Resume re-enters raw mode after Suspend.
func (t *Terminal) Resume(wasRaw bool) error {
	if !wasRaw {
		return nil
	}
	return t.EnterRaw()
}

// Write prints p to Out. Line feeds are not translated, so callers write
// outside raw mode.
func (t *Terminal) Write(p []byte) (int, error) {
	if t.Out == nil {
		return len(p), nil
	}
	return t.Out.Write(p)
}

// Size returns the terminal width and height, or 80x24 when unknown.
func (t *Terminal) Size() (width, height int) {
	if t.In != nil {
		if w, h, err := term.GetSize(int(t.In.Fd())); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 80, 24
}
