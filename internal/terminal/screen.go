package terminal

import (
	"io"
	"strings"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	showCursor  = "\x1b[?25h"
	hideCursor  = "\x1b[?25l"
)

// Screen redraws a whole view on every Draw.
type Screen struct {
	w io.Writer
}

// NewScreen returns a Screen writing to w.
func NewScreen(w io.Writer) *Screen { return &Screen{w: w} }

// Draw clears the screen and writes view. Line feeds become CRLF since the
// terminal is in raw mode.
func (s *Screen) Draw(view string) error {
	var b strings.Builder
	b.Grow(len(view) + len(view)/16 + len(clearScreen) + len(hideCursor))
	b.WriteString(hideCursor)
	b.WriteString(clearScreen)
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(view, "\r\n", "\n"), "\n", "\r\n"))
	_, err := io.WriteString(s.w, b.String())
	return err
}

// Close clears the screen and shows the cursor again.
func (s *Screen) Close() error {
	_, err := io.WriteString(s.w, clearScreen+showCursor)
	return err
}
