package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// StateID identifies a state. The zero value is terminal.
type StateID int

const (
	StateNone StateID = iota
	StateMenu
	StatePrompt
	StateAutoPrompt
	StateExample
	StateAgentTurn
	StateAutoSolve
	StateTrain
	StateSaveModel
	StateLoadModel
	StateReset
	StateEval
	StateExit
	numStates
)

var stateNames = [numStates]string{
	StateNone:       "none",
	StateMenu:       "menu",
	StatePrompt:     "prompt",
	StateAutoPrompt: "auto-prompt",
	StateExample:    "example",
	StateAgentTurn:  "agent-turn",
	StateAutoSolve:  "auto-solve",
	StateTrain:      "train",
	StateSaveModel:  "save-model",
	StateLoadModel:  "load-model",
	StateReset:      "reset-session",
	StateEval:       "eval",
	StateExit:       "exit",
}

func (id StateID) String() string {
	if id >= 0 && id < numStates {
		return stateNames[id]
	}
	return fmt.Sprintf("state(%d)", int(id))
}

// Binding is one entry of a state's help strip.
type Binding struct {
	Key   string
	Label string
}

// State is the behavior of one StateID. States keep no data of their own,
// so any state may be re-entered any number of times.
type State struct {
	// Render returns the view. It must not mutate the session.
	Render func(s *Session) string
	// Execute performs one bounded unit of interactive work and returns the
	// successor, StateNone to terminate.
	Execute func(ctx context.Context, s *Session) (StateID, error)
	// Commands describes the keys the state reacts to. Display only.
	Commands func() []Binding
}

var states [numStates]State

func init() {
	states = [numStates]State{
		StateMenu:       {Render: renderMenu, Execute: executeMenu, Commands: menuCommands},
		StatePrompt:     {Render: renderPrompt, Execute: executePrompt, Commands: promptCommands},
		StateAutoPrompt: {Render: renderBusy("Generating an instruction..."), Execute: executeAutoPrompt},
		StateExample:    {Render: renderExample, Execute: executeExample, Commands: exampleCommands},
		StateAgentTurn:  {Render: renderAgentTurn, Execute: executeAgentTurn},
		StateAutoSolve:  {Render: renderAgentTurn, Execute: executeAutoSolve},
		StateTrain:      {Render: renderBusy("Training on new actions..."), Execute: executeTrain},
		StateSaveModel:  {Render: renderSaveModel, Execute: executeSaveModel, Commands: promptCommands},
		StateLoadModel:  {Render: renderLoadModel, Execute: executeLoadModel, Commands: selectCommands},
		StateReset:      {Render: renderBusy("Resetting the session..."), Execute: executeReset},
		StateEval:       {Render: renderEval, Execute: executeEval, Commands: selectCommands},
		StateExit:       {Render: renderExit, Execute: executeExit},
	}
}

// Lookup returns the state for id. StateNone has no state.
func Lookup(id StateID) (State, bool) {
	if id <= StateNone || id >= numStates {
		return State{}, false
	}
	return states[id], true
}

// Step renders id and executes one cycle of it. End of input is not an
// error: it moves to StateExit, or ends the session if already exiting.
func Step(ctx context.Context, s *Session, id StateID) (StateID, error) {
	st, ok := Lookup(id)
	if !ok {
		return StateNone, fmt.Errorf("unknown state %v", id)
	}
	if err := s.draw(st.Render(s)); err != nil {
		return StateNone, fmt.Errorf("draw %v: %w", id, err)
	}
	next, err := st.Execute(ctx, s)
	if errors.Is(err, io.EOF) {
		s.Logger.Info("input closed", "state", id.String())
		if id == StateExit {
			return StateNone, nil
		}
		return StateExit, nil
	}
	if err != nil {
		return StateNone, fmt.Errorf("%v: %w", id, err)
	}
	return next, nil
}

func executeExit(context.Context, *Session) (StateID, error) {
	return StateNone, nil
}
