// Package argv splits a configured command line into arguments using
// POSIX shell quoting, without expansion of any kind.
package argv

import (
	"errors"
	"strings"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrTrailingBackslash = errors.New("trailing backslash")
)

// Split parses s into arguments:
//   - unquoted spaces, tabs and newlines separate arguments;
//   - single quotes preserve their contents literally;
//   - inside double quotes a backslash escapes only $, `, ", \ and newline;
//   - outside quotes a backslash escapes the next rune, and a
//     backslash-newline pair is removed entirely.
//
// Quotes may start or end mid-word, and "" is an empty argument.
func Split(s string) ([]string, error) {
	var (
		args  []string
		cur   strings.Builder
		inArg bool
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}

		case r == '\\':
			i++
			if i == len(runes) {
				return nil, ErrTrailingBackslash
			}
			if runes[i] == '\n' {
				continue
			}
			cur.WriteRune(runes[i])
			inArg = true

		case r == '\'':
			end := indexFrom(runes, i+1, '\'')
			if end < 0 {
				return nil, ErrUnterminatedQuote
			}
			cur.WriteString(string(runes[i+1 : end]))
			i = end
			inArg = true

		case r == '"':
			i++
			for ; i < len(runes) && runes[i] != '"'; i++ {
				if runes[i] == '\\' && i+1 < len(runes) && strings.ContainsRune("$`\"\\\n", runes[i+1]) {
					i++
					if runes[i] == '\n' {
						continue
					}
				}
				cur.WriteRune(runes[i])
			}
			if i == len(runes) {
				return nil, ErrUnterminatedQuote
			}
			inArg = true

		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}

func indexFrom(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
