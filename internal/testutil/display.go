package testutil

import (
	"fmt"
	"strings"
)

// Display records every drawn view.
type Display struct {
	Views []string
}

// Draw implements the display contract.
func (d *Display) Draw(view string) error {
	d.Views = append(d.Views, view)
	return nil
}

// Last returns the most recent view, or "".
func (d *Display) Last() string {
	if len(d.Views) == 0 {
		return ""
	}
	return d.Views[len(d.Views)-1]
}

// Contains reports whether any view contains s.
func (d *Display) Contains(s string) bool {
	for _, v := range d.Views {
		if strings.Contains(v, s) {
			return true
		}
	}
	return false
}

// Shell counts terminal mode switches and records what is printed.
type Shell struct {
	Suspended, Resumed int
	raw                bool
	out                strings.Builder
}

// NewShell returns a Shell that starts in raw mode.
func NewShell() *Shell { return &Shell{raw: true} }

// Suspend implements the shell mode contract.
func (s *Shell) Suspend() (bool, error) {
	s.Suspended++
	was := s.raw
	s.raw = false
	return was, nil
}

// Resume implements the shell mode contract.
func (s *Shell) Resume(wasRaw bool) error {
	s.Resumed++
	s.raw = wasRaw
	return nil
}

// Raw reports the current mode.
func (s *Shell) Raw() bool { return s.raw }

// Write implements the shell mode contract. Writes in raw mode fail.
func (s *Shell) Write(p []byte) (int, error) {
	if s.raw {
		return 0, fmt.Errorf("testutil: write %q in raw mode", p)
	}
	return s.out.Write(p)
}

// Output returns everything written.
func (s *Shell) Output() string { return s.out.String() }
