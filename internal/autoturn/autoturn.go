// Package autoturn runs one bounded agent turn.
package autoturn

import (
	"context"
	"fmt"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/workspace"
)

// Policy is the part of an agent used to generate a turn.
type Policy interface {
	NextAction(ctx context.Context, state any, obs workspace.Observation) (any, action.ID, error)
	EndOfTurn() action.ID
	MaxGenLength() int
}

// Driver wires a policy to a workspace. Apply is responsible for both
// mutating the workspace and recording the action.
type Driver struct {
	Policy  Policy
	Observe func() workspace.Observation
	Apply   func(ctx context.Context, a action.Action) error
	// Render, if set, is called before every step.
	Render func() error
}

// Run generates and applies at most MaxGenLength agent actions, stopping
// after the first end-of-turn action. Cancellation is checked between
// steps only. It returns the number of actions applied.
func (d Driver) Run(ctx context.Context) (int, error) {
	var (
		state   any
		applied int
		eot     = d.Policy.EndOfTurn()
	)
	for range max(d.Policy.MaxGenLength(), 0) {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if d.Render != nil {
			if err := d.Render(); err != nil {
				return applied, err
			}
		}
		next, id, err := d.Policy.NextAction(ctx, state, d.Observe())
		if err != nil {
			return applied, fmt.Errorf("agent next action: %w", err)
		}
		state = next
		if err := d.Apply(ctx, action.Action{ID: id, Source: action.SourceAgent}); err != nil {
			return applied, err
		}
		applied++
		if id == eot {
			break
		}
	}
	return applied, nil
}
