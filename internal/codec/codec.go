// Package codec maps text and symbolic commands to discrete action ids.
//
// The mapping is fixed: every command symbol owns a small id, and every
// rune of text owns the id len(commands)+rune. Round-tripping is not
// required by callers, but Decode is provided for logs and views.
package codec

import (
	"fmt"
	"strings"

	"github.com/joeycumines/clica/internal/action"
)

// Command is a symbolic, non-text action.
type Command string

const (
	Commit    Command = "<commit>"
	Left      Command = "<left>"
	Right     Command = "<right>"
	Up        Command = "<up>"
	Down      Command = "<down>"
	Home      Command = "<home>"
	End       Command = "<end>"
	Backspace Command = "<backspace>"
	Delete    Command = "<delete>"
	Run       Command = "<run>"
	EndOfTurn Command = "<eos>"
)

// Commands lists every command in id order. The order is part of the
// encoding and must only ever be appended to.
var Commands = []Command{
	Commit,
	Left,
	Right,
	Up,
	Down,
	Home,
	End,
	Backspace,
	Delete,
	Run,
	EndOfTurn,
}

// Codec is the text to action contract used by the interactive core.
type Codec interface {
	// Encode converts text to an ordered sequence of action ids.
	Encode(text string) []action.ID
	// IDFor returns the id of a symbolic command.
	IDFor(cmd Command) (action.ID, bool)
}

// Vocabulary is the default rune-level Codec.
type Vocabulary struct {
	byCommand map[Command]action.ID
}

// NewVocabulary returns the default vocabulary.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{byCommand: make(map[Command]action.ID, len(Commands))}
	for i, c := range Commands {
		v.byCommand[c] = action.ID(i)
	}
	return v
}

// Encode implements Codec.
func (v *Vocabulary) Encode(text string) []action.ID {
	if text == "" {
		return nil
	}
	ids := make([]action.ID, 0, len(text))
	for _, r := range text {
		ids = append(ids, action.ID(len(Commands))+action.ID(r))
	}
	return ids
}

// IDFor implements Codec.
func (v *Vocabulary) IDFor(cmd Command) (action.ID, bool) {
	id, ok := v.byCommand[cmd]
	return id, ok
}

// MustID is IDFor for commands known to exist.
func (v *Vocabulary) MustID(cmd Command) action.ID {
	id, ok := v.IDFor(cmd)
	if !ok {
		panic(fmt.Sprintf("codec: unknown command %q", cmd))
	}
	return id
}

// IsCommand reports whether id is a command id.
func (v *Vocabulary) IsCommand(id action.ID) bool {
	return id >= 0 && int(id) < len(Commands)
}

// Command returns the command for id, if id is a command.
func (v *Vocabulary) Command(id action.ID) (Command, bool) {
	if !v.IsCommand(id) {
		return "", false
	}
	return Commands[id], true
}

// Rune returns the text rune for id, if id is a text id.
func (v *Vocabulary) Rune(id action.ID) (rune, bool) {
	if id < action.ID(len(Commands)) {
		return 0, false
	}
	return rune(id - action.ID(len(Commands))), true
}

// Decode returns a printable form of id: the command symbol or the rune.
func (v *Vocabulary) Decode(id action.ID) string {
	if c, ok := v.Command(id); ok {
		return string(c)
	}
	if r, ok := v.Rune(id); ok {
		return string(r)
	}
	return fmt.Sprintf("<unk:%d>", int(id))
}

// DecodeAll concatenates Decode over ids.
func (v *Vocabulary) DecodeAll(ids []action.ID) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(v.Decode(id))
	}
	return b.String()
}

// Text decodes only the text ids in ids, dropping commands.
func (v *Vocabulary) Text(ids []action.ID) string {
	var b strings.Builder
	for _, id := range ids {
		if r, ok := v.Rune(id); ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ Codec = (*Vocabulary)(nil)
