// Package termtest drives programs through a real pseudo-terminal.
package termtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

// DefaultSize is the window size of every PTY.
var DefaultSize = pty.Winsize{Rows: 24, Cols: 80}

// PTY is one pseudo-terminal. The master side is read continuously into an
// output buffer; input written to it arrives on the terminal.
type PTY struct {
	ptm *os.File
	tty *os.File
	cmd *exec.Cmd

	mu     sync.Mutex
	output strings.Builder
	done   chan struct{}
	waited chan struct{}
	exit   error
	closed bool
}

// Open creates a PTY pair for in-process use. TTY returns the terminal
// side.
func Open() (*PTY, error) {
	ptm, tty, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open pty: %w", err)
	}
	ws := DefaultSize
	_ = pty.Setsize(ptm, &ws)
	p := &PTY{ptm: ptm, tty: tty, done: make(chan struct{})}
	go p.readOutput()
	return p, nil
}

// Start runs cmd with the PTY as its controlling terminal.
func Start(ctx context.Context, name string, args []string, env []string) (*PTY, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, env...)
	ws := DefaultSize
	ptm, err := pty.StartWithSize(cmd, &ws)
	if err != nil {
		return nil, fmt.Errorf("failed to start command with pty: %w", err)
	}
	p := &PTY{ptm: ptm, cmd: cmd, done: make(chan struct{}), waited: make(chan struct{})}
	go p.readOutput()
	go func() {
		p.exit = cmd.Wait()
		close(p.waited)
	}()
	return p, nil
}

// TTY returns the terminal side of a PTY from Open.
func (p *PTY) TTY() *os.File { return p.tty }

// Send writes input as if typed in one burst.
func (p *PTY) Send(input string) error {
	if _, err := p.ptm.WriteString(input); err != nil {
		return fmt.Errorf("failed to write input: %w", err)
	}
	return nil
}

// SendKeys writes each named key, pausing between keys so that each one
// arrives in its own read.
func (p *PTY) SendKeys(names ...string) error {
	for _, name := range names {
		seq, err := Sequence(name)
		if err != nil {
			return err
		}
		if err := p.Send(seq); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}

// Output returns everything read from the terminal so far.
func (p *PTY) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output.String()
}

// OutputLen returns the current output length, for WaitForSince.
func (p *PTY) OutputLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output.Len()
}

// WaitFor waits until text appears anywhere in the output.
func (p *PTY) WaitFor(text string, timeout time.Duration) error {
	return p.WaitForSince(text, 0, timeout)
}

// WaitForSince waits until text appears in output after offset start.
func (p *PTY) WaitForSince(text string, start int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		out := p.Output()
		if start <= len(out) && strings.Contains(out[start:], text) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("expected text %q not found in output after %v (output length: %d)", text, timeout, len(out))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Wait waits for a started command to exit and returns its exit code.
func (p *PTY) Wait(timeout time.Duration) (int, error) {
	if p.cmd == nil {
		return 0, errors.New("no command running")
	}
	select {
	case <-p.waited:
	case <-time.After(timeout):
		_ = p.cmd.Process.Kill()
		return -1, fmt.Errorf("command timeout after %v", timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(p.exit, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if p.exit != nil {
		return -1, p.exit
	}
	return 0, nil
}

// Close kills any running command and closes both sides.
func (p *PTY) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	if p.cmd != nil && p.cmd.Process != nil {
		select {
		case <-p.waited:
		default:
			_ = p.cmd.Process.Kill()
			<-p.waited
		}
	}
	if p.tty != nil {
		errs = append(errs, p.tty.Close())
	}
	errs = append(errs, p.ptm.Close())
	select {
	case <-p.done:
	case <-time.After(time.Second):
	}
	return errors.Join(errs...)
}

func (p *PTY) readOutput() {
	defer close(p.done)
	buf := make([]byte, 4096)
	for {
		n, err := p.ptm.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.output.Write(buf[:n])
			p.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Resize changes the window size.
func (p *PTY) Resize(cols, rows uint16) error {
	return pty.Setsize(p.ptm, &pty.Winsize{Cols: cols, Rows: rows})
}
