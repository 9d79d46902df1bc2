package termtest

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var sequences = map[string]string{
	"enter":      "\r",
	"esc":        "\x1b",
	"tab":        "\t",
	"backspace":  "\x7f",
	"delete":     "\x1b[3~",
	"up":         "\x1b[A",
	"down":       "\x1b[B",
	"right":      "\x1b[C",
	"left":       "\x1b[D",
	"home":       "\x1b[H",
	"end":        "\x1b[F",
	"ctrl+left":  "\x1b[1;5D",
	"ctrl+right": "\x1b[1;5C",
}

// Sequence returns the bytes a terminal sends for a key name: a single
// character, "ctrl+<letter>", or one of enter, esc, tab, backspace, delete,
// the arrows, home, end, ctrl+left and ctrl+right.
func Sequence(name string) (string, error) {
	if utf8.RuneCountInString(name) == 1 {
		return name, nil
	}
	if seq, ok := sequences[name]; ok {
		return seq, nil
	}
	if rest, ok := strings.CutPrefix(name, "ctrl+"); ok && len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
		return string(rune(rest[0] - 'a' + 1)), nil
	}
	return "", fmt.Errorf("unknown key: %s", name)
}
