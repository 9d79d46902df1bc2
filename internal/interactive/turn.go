package interactive

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/autoturn"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/workspace"
)

func renderAgentTurn(s *Session) string {
	return page(StateAgentTurn, workspaceView(s, ""), statusLine(s))
}

func executeAgentTurn(ctx context.Context, s *Session) (StateID, error) {
	n, err := autoturn.Driver{
		Policy:  s.Agent,
		Observe: func() workspace.Observation { return s.Workspace.Observation() },
		Apply:   s.apply,
		Render:  func() error { return s.draw(renderAgentTurn(s)) },
	}.Run(ctx)
	if err != nil {
		return StateMenu, fmt.Errorf("agent turn after %d actions: %w", n, err)
	}
	s.Logger.Info("agent turn finished", "actions", n)
	s.notice = fmt.Sprintf("Agent applied %d actions", n)
	return StateMenu, nil
}

// executeAutoSolve asks the solver for target code and types the edit that
// reaches it as agent actions.
func executeAutoSolve(ctx context.Context, s *Session) (StateID, error) {
	obs := s.Workspace.Observation()
	if strings.TrimSpace(obs.Instruction) == "" {
		return StateMenu, s.showError(ctx, StateAutoSolve, "an instruction is required first")
	}
	if s.Solver == nil {
		return StateMenu, s.showError(ctx, StateAutoSolve, "no solution generator is configured")
	}
	target, err := s.Solver.Solve(ctx, obs.Instruction, obs.Code, obs.Output)
	if err != nil {
		return StateMenu, s.showError(ctx, StateAutoSolve, fmt.Sprintf("solve: %v", err))
	}

	// Queued text would otherwise be inserted by the edit's commit.
	backspace := s.Vocab.MustID(codec.Backspace)
	var ids []action.ID
	for range utf8.RuneCountInString(obs.TextQueue) {
		ids = append(ids, backspace)
	}
	ids = append(ids, workspace.EditActions(s.Vocab, obs.Code, obs.Cursor, target)...)

	for _, id := range ids {
		if err := s.apply(ctx, action.Action{ID: id, Source: action.SourceAgent}); err != nil {
			return StateMenu, err
		}
		if err := s.draw(renderAgentTurn(s)); err != nil {
			return StateMenu, err
		}
	}
	s.Logger.Info("auto solve applied", "actions", len(ids))
	s.notice = fmt.Sprintf("Solution typed in %d actions", len(ids))
	return StateMenu, nil
}
