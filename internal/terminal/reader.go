package terminal

import (
	"context"
	"io"
	"os"
	"sync"
	"unicode/utf8"
)

// KeyReader is a pull-based key source over a byte stream. One goroutine
// owns the underlying reads, so Next honours ctx while a read is blocked
// and a canceled Next loses no input.
//
// Next must not be called concurrently.
type KeyReader struct {
	// Resize, when set, delivers KeyResize for every signal received.
	Resize <-chan os.Signal

	r       io.Reader
	once    sync.Once
	reads   chan chunk
	pending []byte
	err     error
}

type chunk struct {
	b   []byte
	err error
}

// NewKeyReader returns a KeyReader reading from r. Nothing is read until
// the first Next.
func NewKeyReader(r io.Reader) *KeyReader {
	return &KeyReader{r: r, reads: make(chan chunk, 1)}
}

func (kr *KeyReader) start() {
	kr.once.Do(func() {
		go func() {
			for {
				buf := make([]byte, 256)
				n, err := kr.r.Read(buf)
				kr.reads <- chunk{b: buf[:n], err: err}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Next returns the next key. It returns io.EOF once the stream ends and
// every buffered key has been returned.
func (kr *KeyReader) Next(ctx context.Context) (Key, error) {
	for {
		if len(kr.pending) > 0 && (kr.err != nil || complete(kr.pending)) {
			k, n := Decode(kr.pending)
			kr.pending = kr.pending[n:]
			return k, nil
		}
		if kr.err != nil {
			return "", kr.err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		kr.start()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-kr.Resize:
			return KeyResize, nil
		case c := <-kr.reads:
			kr.pending = append(kr.pending, c.b...)
			if c.err != nil {
				kr.err = c.err
			}
		}
	}
}

// complete reports whether b starts with a whole UTF-8 rune. Escape
// sequences are assumed to arrive in a single read.
func complete(b []byte) bool {
	return b[0] < utf8.RuneSelf || utf8.FullRune(b)
}
