package selector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/clica/internal/terminal"
)

// KeySource yields decoded keys; terminal.KeyReader is one.
type KeySource interface {
	Next(ctx context.Context) (terminal.Key, error)
}

// Prompter runs list and input prompts as short-lived bubbletea programs.
// Keys come from Keys rather than from the terminal directly, so input
// already buffered by the caller reaches the prompt and no key past the
// one that closes it is consumed.
type Prompter struct {
	Keys    KeySource
	Out     io.Writer
	Options []tea.ProgramOption
}

// model is a prompt that knows when it has finished.
type model interface {
	tea.Model
	Done() bool
}

// feed forwards to a prompt and acknowledges each key it handles.
type feed struct {
	model
	acks chan bool
}

func (f *feed) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := f.model.Update(msg)
	f.model = m.(model)
	if _, ok := msg.(tea.KeyMsg); ok {
		select {
		case f.acks <- f.model.Done():
		default:
		}
	}
	return f, cmd
}

func (p Prompter) run(ctx context.Context, m model) (model, error) {
	f := &feed{model: m, acks: make(chan bool, 1)}
	opts := append([]tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(p.Out),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	}, p.Options...)
	prog := tea.NewProgram(f, opts...)

	pumpCtx, stop := context.WithCancel(ctx)
	var (
		wg      sync.WaitGroup
		pumpErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		pumpErr = pump(pumpCtx, p.Keys, prog, f.acks)
	}()
	final, err := prog.Run()
	stop()
	wg.Wait()

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("prompt: %w", err)
	}
	if pumpErr != nil {
		return nil, pumpErr
	}
	return final.(*feed).model, nil
}

// pump delivers keys one at a time, waiting for each to be handled, and
// stops once the prompt is done. A read error ends the program and is
// returned.
func pump(ctx context.Context, keys KeySource, prog *tea.Program, acks <-chan bool) error {
	for {
		k, err := keys.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			prog.Quit()
			return err
		}
		msg, ok := keyMsg(k)
		if !ok {
			continue
		}
		prog.Send(msg)
		select {
		case done := <-acks:
			if done {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

var keyTypes = map[terminal.Key]tea.KeyType{
	terminal.KeyEnter:     tea.KeyEnter,
	terminal.KeyEscape:    tea.KeyEsc,
	terminal.KeyTab:       tea.KeyTab,
	terminal.KeyBackspace: tea.KeyBackspace,
	terminal.KeyDelete:    tea.KeyDelete,
	terminal.KeyUp:        tea.KeyUp,
	terminal.KeyDown:      tea.KeyDown,
	terminal.KeyLeft:      tea.KeyLeft,
	terminal.KeyRight:     tea.KeyRight,
	terminal.KeyHome:      tea.KeyHome,
	terminal.KeyEnd:       tea.KeyEnd,
	terminal.KeyCtrlLeft:  tea.KeyCtrlLeft,
	terminal.KeyCtrlRight: tea.KeyCtrlRight,
}

// keyMsg converts k to the message bubbletea would have decoded. Resize
// and unknown keys have none.
func keyMsg(k terminal.Key) (tea.KeyMsg, bool) {
	if r, ok := k.Rune(); ok {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, true
	}
	if t, ok := keyTypes[k]; ok {
		return tea.KeyMsg{Type: t}, true
	}
	if rest, ok := strings.CutPrefix(string(k), "ctrl+"); ok && len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
		return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(rest[0]-'a')}, true
	}
	return tea.KeyMsg{}, false
}

// ReadLine asks for one line of text. ok is false when dismissed.
func (p Prompter) ReadLine(ctx context.Context, title, initial string) (string, bool, error) {
	final, err := p.run(ctx, NewInput(title, initial))
	if err != nil {
		return "", false, err
	}
	in := final.(*Input)
	if in.Canceled() {
		return "", false, nil
	}
	return in.Value(), true, nil
}

// Select asks for one item, or several when multi. A dismissed prompt
// returns no items.
func (p Prompter) Select(ctx context.Context, title string, items []string, multi bool) ([]string, error) {
	final, err := p.run(ctx, NewList(title, items, multi))
	if err != nil {
		return nil, err
	}
	l := final.(*List)
	if l.Canceled() {
		return nil, nil
	}
	return l.Chosen(), nil
}
