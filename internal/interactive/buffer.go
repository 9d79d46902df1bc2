package interactive

import (
	"strings"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
)

// Mode is the state of a Buffer.
type Mode int

const (
	// ModeCollecting means typed text accumulates and nothing waits to be
	// applied.
	ModeCollecting Mode = iota
	// ModeDraining means flushed actions are queued for application.
	ModeDraining
)

func (m Mode) String() string {
	if m == ModeDraining {
		return "draining"
	}
	return "collecting"
}

// Buffer turns typed text into actions. Text is held until a flush, which
// encodes it and terminates it with a commit action. Flushed actions wait in
// a FIFO queue until popped and applied.
type Buffer struct {
	codec  codec.Codec
	commit action.ID
	text   strings.Builder
	queue  []action.ID
}

// NewBuffer returns an empty buffer encoding with c.
func NewBuffer(c codec.Codec) *Buffer {
	commit, ok := c.IDFor(codec.Commit)
	if !ok {
		panic("interactive: codec has no commit action")
	}
	return &Buffer{codec: c, commit: commit}
}

// Append adds text to the buffer.
func (b *Buffer) Append(text string) { b.text.WriteString(text) }

// Text returns the buffered, not yet flushed text.
func (b *Buffer) Text() string { return b.text.String() }

// Empty reports whether no text is buffered.
func (b *Buffer) Empty() bool { return b.text.Len() == 0 }

// Flush returns encode(text) followed by a commit and clears the text. It
// returns nothing when no text is buffered.
func (b *Buffer) Flush() []action.ID {
	if b.Empty() {
		return nil
	}
	return b.FlushCommit()
}

// FlushCommit is Flush for an explicitly requested commit: the commit is
// emitted even when no text is buffered.
func (b *Buffer) FlushCommit() []action.ID {
	ids := append(b.codec.Encode(b.text.String()), b.commit)
	b.text.Reset()
	return ids
}

// FlushWith is Flush followed by trailing, so the text typed before a
// command key is always emitted ahead of it.
func (b *Buffer) FlushWith(trailing action.ID) []action.ID {
	return append(b.Flush(), trailing)
}

// Enqueue queues ids after any already queued.
func (b *Buffer) Enqueue(ids ...action.ID) { b.queue = append(b.queue, ids...) }

// Pop removes and returns the oldest queued action.
func (b *Buffer) Pop() (action.ID, bool) {
	if len(b.queue) == 0 {
		return 0, false
	}
	id := b.queue[0]
	b.queue = b.queue[1:]
	return id, true
}

// Queued returns the number of queued actions.
func (b *Buffer) Queued() int { return len(b.queue) }

// Mode reports whether queued actions are waiting.
func (b *Buffer) Mode() Mode {
	if len(b.queue) > 0 {
		return ModeDraining
	}
	return ModeCollecting
}

// Reset discards buffered text and queued actions.
func (b *Buffer) Reset() {
	b.text.Reset()
	b.queue = nil
}
