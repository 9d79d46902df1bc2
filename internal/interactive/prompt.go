package interactive

import (
	"context"
	"fmt"

	"github.com/joeycumines/clica/internal/action"
)

func promptCommands() []Binding {
	return []Binding{{"enter", "accept"}, {"esc", "cancel"}}
}

func renderPrompt(s *Session) string {
	return page(StatePrompt, workspaceView(s, ""))
}

// executePrompt reads an instruction from the operator. Dismissing the
// prompt leaves the instruction alone.
func executePrompt(ctx context.Context, s *Session) (StateID, error) {
	current := s.Workspace.Observation().Instruction
	line, ok, err := s.Prompter.ReadLine(ctx, "Instruction", current)
	if err != nil {
		return StateMenu, err
	}
	if !ok {
		return StateMenu, nil
	}
	return StateMenu, s.setInstruction(ctx, line, action.SourceHuman)
}

func executeAutoPrompt(ctx context.Context, s *Session) (StateID, error) {
	if s.Generator == nil {
		return StateMenu, s.showError(ctx, StateAutoPrompt, "no problem generator is configured")
	}
	text, err := s.Generator.Generate(ctx)
	if err != nil {
		return StateMenu, s.showError(ctx, StateAutoPrompt, fmt.Sprintf("generate instruction: %v", err))
	}
	return StateMenu, s.setInstruction(ctx, text, action.SourceAgent)
}
