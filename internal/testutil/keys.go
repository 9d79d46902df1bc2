// Package testutil provides scripted stand-ins for the terminal, prompts and
// screen so interactive flows can be tested without a real terminal.
package testutil

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/joeycumines/clica/internal/terminal"
)

// Keys is a scripted key source. Once every key is consumed it returns
// io.EOF.
type Keys struct {
	keys []terminal.Key
	pos  int
}

// NewKeys parses each name with terminal.ParseKey. A name of the form
// "text:abc" expands to one key per rune. It panics on unknown names.
func NewKeys(names ...string) *Keys {
	k := &Keys{}
	k.Push(names...)
	return k
}

// Push appends more keys to the script.
func (k *Keys) Push(names ...string) {
	for _, name := range names {
		if text, ok := strings.CutPrefix(name, "text:"); ok {
			for _, r := range text {
				k.keys = append(k.keys, terminal.Key(string(r)))
			}
			continue
		}
		key, ok := terminal.ParseKey(name)
		if !ok {
			panic(fmt.Sprintf("testutil: unknown key %q", name))
		}
		k.keys = append(k.keys, key)
	}
}

// Next implements the key source contract.
func (k *Keys) Next(ctx context.Context) (terminal.Key, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if k.pos >= len(k.keys) {
		return "", io.EOF
	}
	key := k.keys[k.pos]
	k.pos++
	return key, nil
}

// Remaining returns the number of unread keys.
func (k *Keys) Remaining() int { return len(k.keys) - k.pos }

var sessionCounter int64

// NewTestSessionID returns a process-unique session id. Pass t.Name() so ids
// trace back to their test.
func NewTestSessionID(prefix, tname string) string {
	id := atomic.AddInt64(&sessionCounter, 1)
	return fmt.Sprintf("%s-%s-%d", prefix, strings.ReplaceAll(tname, `/`, `-_-`), id)
}
