package interactive

import (
	"context"

	"github.com/joeycumines/clica/internal/terminal"
)

var menuKeys = map[terminal.Key]StateID{
	"p":                StatePrompt,
	terminal.Ctrl('p'): StateAutoPrompt,
	",":                StateAutoPrompt,
	"e":                StateExample,
	"t":                StateTrain,
	"s":                StateSaveModel,
	"l":                StateLoadModel,
	terminal.KeyEnter:  StateAgentTurn,
	terminal.Ctrl('e'): StateAutoSolve,
	".":                StateAutoSolve,
	terminal.KeyEscape: StateExit,
	terminal.Ctrl('c'): StateExit,
	"r":                StateReset,
	"v":                StateEval,
}

var rewardKeys = map[terminal.Key]int{"+": 1, "=": 1, "-": -1}

func menuCommands() []Binding {
	return []Binding{
		{"p", "prompt"},
		{", ^p", "auto prompt"},
		{"e", "example"},
		{"enter", "agent turn"},
		{". ^e", "auto solve"},
		{"t", "train"},
		{"s", "save"},
		{"l", "load"},
		{"v", "eval"},
		{"r", "reset"},
		{"+ -", "reward"},
		{"esc", "exit"},
	}
}

func renderMenu(s *Session) string {
	var notice string
	if s.notice != "" {
		notice = okStyle.Render(s.notice)
	}
	return page(StateMenu, workspaceView(s, ""), notice, statusLine(s))
}

func executeMenu(ctx context.Context, s *Session) (StateID, error) {
	k, err := s.Keys.Next(ctx)
	if err != nil {
		return StateMenu, err
	}
	s.notice = ""
	if delta, ok := rewardKeys[k]; ok {
		s.Reward += delta
		s.Logger.Info("reward adjusted", "delta", delta, "reward", s.Reward)
		return StateMenu, nil
	}
	if next, ok := menuKeys[k]; ok {
		return next, nil
	}
	return StateMenu, nil
}
