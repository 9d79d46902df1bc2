package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes workspace code and returns its combined output.
type Runner interface {
	Run(ctx context.Context, code string) (string, error)
}

// ErrExecutionDisabled is reported by NopRunner.
var ErrExecutionDisabled = errors.New("code execution disabled (set workspace.run-command)")

// NopRunner never executes anything.
type NopRunner struct{}

// Run implements Runner.
func (NopRunner) Run(context.Context, string) (string, error) {
	return "", ErrExecutionDisabled
}

// ExecRunner pipes the code into an external command on stdin.
type ExecRunner struct {
	// Command is the argv, e.g. {"python3", "-"}.
	Command []string
	// Timeout bounds each execution; zero means no limit.
	Timeout time.Duration
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, code string) (string, error) {
	if len(r.Command) == 0 {
		return "", ErrExecutionDisabled
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Stdin = bytes.NewBufferString(code)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return out.String(), fmt.Errorf("run %s: %w", r.Command[0], ctx.Err())
		}
		return out.String(), fmt.Errorf("run %s: %w", r.Command[0], err)
	}
	return out.String(), nil
}
