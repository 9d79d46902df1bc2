// Package terminal turns raw terminal input into logical key events and
// draws full-screen views.
package terminal

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key is one logical input event. Printable runes are represented by
// themselves; everything else by a named constant.
type Key string

const (
	KeyUnknown   Key = "unknown"
	KeyEscape    Key = "esc"
	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyHome      Key = "home"
	KeyEnd       Key = "end"
	KeyCtrlLeft  Key = "ctrl+left"
	KeyCtrlRight Key = "ctrl+right"
	KeyResize    Key = "resize"
)

// Ctrl returns the key for ctrl plus a letter, e.g. Ctrl('c') is "ctrl+c".
func Ctrl(letter rune) Key {
	return Key("ctrl+" + string(unicode.ToLower(letter)))
}

// Rune returns the printable rune k represents.
func (k Key) Rune() (rune, bool) {
	r, size := utf8.DecodeRuneInString(string(k))
	if size == 0 || size != len(k) || r == utf8.RuneError || !unicode.IsPrint(r) {
		return 0, false
	}
	return r, true
}

// ParseKey parses a user-facing key name such as "esc", "ctrl-p",
// "control+c", "Enter" or a single printable character.
func ParseKey(s string) (Key, bool) {
	if k := Key(s); len(s) > 0 {
		if _, ok := k.Rune(); ok {
			return k, true
		}
	}
	name := strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"ctrl-", "ctrl+", "control-", "control+", "c-", "^"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			switch rest {
			case "left":
				return KeyCtrlLeft, true
			case "right":
				return KeyCtrlRight, true
			}
			if len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
				return Ctrl(rune(rest[0])), true
			}
			return "", false
		}
	}
	switch name {
	case "escape", "esc":
		return KeyEscape, true
	case "enter", "return":
		return KeyEnter, true
	case "tab":
		return KeyTab, true
	case "backspace":
		return KeyBackspace, true
	case "delete", "del":
		return KeyDelete, true
	case "up", "down", "left", "right", "home", "end", "resize":
		return Key(name), true
	case "space":
		return " ", true
	}
	return "", false
}
