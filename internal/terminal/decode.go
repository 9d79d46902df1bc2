package terminal

import (
	"bytes"
	"unicode/utf8"

	"github.com/joeycumines/go-prompt"
)

const esc = 0x1b

// promptKeys maps go-prompt's key codes onto Key. Assignment rather than a
// literal, since some go-prompt names alias the same control code.
var promptKeys = func() map[prompt.Key]Key {
	m := map[prompt.Key]Key{
		prompt.Escape:       KeyEscape,
		prompt.Up:           KeyUp,
		prompt.Down:         KeyDown,
		prompt.Left:         KeyLeft,
		prompt.Right:        KeyRight,
		prompt.Home:         KeyHome,
		prompt.End:          KeyEnd,
		prompt.Delete:       KeyDelete,
		prompt.ControlLeft:  KeyCtrlLeft,
		prompt.ControlRight: KeyCtrlRight,
	}
	controls := []prompt.Key{
		prompt.ControlA, prompt.ControlB, prompt.ControlC, prompt.ControlD,
		prompt.ControlE, prompt.ControlF, prompt.ControlG, prompt.ControlH,
		prompt.ControlI, prompt.ControlJ, prompt.ControlK, prompt.ControlL,
		prompt.ControlM, prompt.ControlN, prompt.ControlO, prompt.ControlP,
		prompt.ControlQ, prompt.ControlR, prompt.ControlS, prompt.ControlT,
		prompt.ControlU, prompt.ControlV, prompt.ControlW, prompt.ControlX,
		prompt.ControlY, prompt.ControlZ,
	}
	for i, k := range controls {
		m[k] = Ctrl(rune('a' + i))
	}
	m[prompt.ControlH] = KeyBackspace
	m[prompt.Backspace] = KeyBackspace
	m[prompt.ControlI] = KeyTab
	m[prompt.Tab] = KeyTab
	m[prompt.ControlJ] = KeyEnter
	m[prompt.ControlM] = KeyEnter
	m[prompt.Enter] = KeyEnter
	return m
}()

// Decode reads the first key from b, returning it and the number of bytes
// consumed. It returns ("", 0) only for empty input. Control codes and
// escape sequences come from go-prompt's sequence table, longest match
// first; a CSI sequence the table does not know is consumed whole and
// reported as KeyUnknown.
func Decode(b []byte) (Key, int) {
	if len(b) == 0 {
		return "", 0
	}
	code, n := matchSequence(b)
	if n > 1 || (n == 1 && !(b[0] == esc && len(b) > 1 && b[1] == '[')) {
		if k, ok := promptKeys[code]; ok {
			return k, n
		}
		return KeyUnknown, n
	}
	if b[0] == esc {
		if n := csiLen(b); n > 0 {
			return KeyUnknown, n
		}
		return KeyEscape, 1
	}
	if b[0] < 0x20 {
		return KeyUnknown, 1
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return KeyUnknown, 1
	}
	return Key(b[:size]), size
}

func matchSequence(b []byte) (prompt.Key, int) {
	var (
		best prompt.Key
		n    int
	)
	for _, s := range prompt.ASCIISequences {
		if len(s.ASCIICode) > n && bytes.HasPrefix(b, s.ASCIICode) {
			best, n = s.Key, len(s.ASCIICode)
		}
	}
	return best, n
}

// csiLen returns the length of the ESC [ sequence at the start of b, or 0
// if b holds no complete one.
func csiLen(b []byte) int {
	if len(b) < 3 || b[1] != '[' {
		return 0
	}
	for i := 2; i < len(b); i++ {
		switch c := b[i]; {
		case c >= 0x40 && c <= 0x7e:
			return i + 1
		case c < 0x20 || c > 0x3f:
			return 0
		}
	}
	return 0
}
