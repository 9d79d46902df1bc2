package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/terminal"
)

// exampleCommandKeys are the keys that apply a workspace command.
var exampleCommandKeys = map[terminal.Key]codec.Command{
	terminal.KeyLeft:      codec.Left,
	terminal.KeyRight:     codec.Right,
	terminal.KeyUp:        codec.Up,
	terminal.KeyDown:      codec.Down,
	terminal.KeyHome:      codec.Home,
	terminal.KeyEnd:       codec.End,
	terminal.KeyBackspace: codec.Backspace,
	terminal.KeyDelete:    codec.Delete,
	terminal.Ctrl('r'):    codec.Run,
}

// insertBlockKey queues the typed text and a commit without applying it.
const insertBlockKey = terminal.KeyCtrlRight

func exampleCommands() []Binding {
	return []Binding{
		{"type", "text"},
		{"arrows home end", "move"},
		{"bksp del", "delete"},
		{"^r", "run"},
		{"^→", "insert block"},
		{"esc", "done"},
	}
}

// exampleText returns the text a key types, if any.
func exampleText(k terminal.Key) (string, bool) {
	switch k {
	case terminal.KeyEnter:
		return "\n", true
	case terminal.KeyTab:
		return "\t", true
	}
	if r, ok := k.Rune(); ok {
		return string(r), true
	}
	return "", false
}

func renderExample(s *Session) string {
	mode := faintStyle.Render(fmt.Sprintf("buffer %s · %d queued", s.Buffer.Mode(), s.Buffer.Queued()))
	return page(StateExample, workspaceView(s, s.Buffer.Text()), mode, statusLine(s))
}

// executeExample lets the operator demonstrate an edit. Each pass of the
// loop either applies one queued action or consumes one key, so every
// action is rendered as it lands. Leaving always flushes and drains first.
func executeExample(ctx context.Context, s *Session) (StateID, error) {
	buf := s.Buffer
	buf.Reset()
	hold := false
	for {
		if err := s.draw(renderExample(s)); err != nil {
			return StateMenu, err
		}
		if buf.Queued() > 0 && !hold {
			if err := s.applyQueued(ctx); err != nil {
				return StateMenu, err
			}
			continue
		}
		hold = false

		k, err := s.Keys.Next(ctx)
		if errors.Is(err, io.EOF) {
			return StateExit, s.drainExample(ctx)
		}
		if err != nil {
			return StateMenu, err
		}

		switch k {
		case terminal.KeyEscape:
			return StateMenu, s.drainExample(ctx)
		case insertBlockKey:
			buf.Enqueue(buf.FlushCommit()...)
			hold = true
			continue
		case terminal.KeyResize:
			continue
		}
		if text, ok := exampleText(k); ok {
			buf.Append(text)
			continue
		}
		cmd, ok := exampleCommandKeys[k]
		if !ok {
			s.Logger.Debug("key ignored", "key", string(k))
			continue
		}
		id := s.Vocab.MustID(cmd)
		if buf.Empty() && buf.Queued() == 0 {
			if err := s.apply(ctx, action.Action{ID: id, Source: action.SourceHuman}); err != nil {
				return StateMenu, err
			}
			continue
		}
		buf.Enqueue(buf.FlushWith(id)...)
	}
}

func (s *Session) applyQueued(ctx context.Context) error {
	id, _ := s.Buffer.Pop()
	return s.apply(ctx, action.Action{ID: id, Source: action.SourceHuman})
}

// drainExample flushes pending text and applies everything queued.
func (s *Session) drainExample(ctx context.Context) error {
	s.Buffer.Enqueue(s.Buffer.Flush()...)
	for s.Buffer.Queued() > 0 {
		if err := s.applyQueued(ctx); err != nil {
			return err
		}
		if err := s.draw(renderExample(s)); err != nil {
			return err
		}
	}
	return nil
}
