package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/joeycumines/clica/internal/action"
)

// MemoryLog is an ActionLog held in memory. It is safe for concurrent use.
type MemoryLog struct {
	mu      sync.Mutex
	entries []action.Entry
	seq     int64
	closed  bool
}

// NewMemoryLog returns an empty log.
func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

// Append implements ActionLog.
func (l *MemoryLog) Append(_ context.Context, e action.Entry) (action.Entry, error) {
	if err := validateEntry(e); err != nil {
		return action.Entry{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return action.Entry{}, ErrClosed
	}
	l.seq++
	e.Seq = l.seq
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// EntriesAfter implements ActionLog.
func (l *MemoryLog) EntriesAfter(_ context.Context, seq int64) ([]action.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	i, _ := slices.BinarySearchFunc(l.entries, seq+1, func(e action.Entry, s int64) int {
		return cmp.Compare(e.Seq, s)
	})
	if i == len(l.entries) {
		return nil, nil
	}
	return slices.Clone(l.entries[i:]), nil
}

// LastSequence implements ActionLog.
func (l *MemoryLog) LastSequence(context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	return l.seq, nil
}

// Close implements ActionLog.
func (l *MemoryLog) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

var _ ActionLog = (*MemoryLog)(nil)
