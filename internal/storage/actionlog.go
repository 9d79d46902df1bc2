package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeycumines/clica/internal/action"
)

// ErrClosed is returned by operations on a closed action log.
var ErrClosed = errors.New("action log is closed")

// ActionLog is the persistent, append-only record of applied actions.
type ActionLog interface {
	// Append stores e and returns it with its assigned Seq and Time.
	// Sequence ids strictly increase and are never reused.
	Append(ctx context.Context, e action.Entry) (action.Entry, error)

	// EntriesAfter returns every entry with Seq > seq, in Seq order.
	EntriesAfter(ctx context.Context, seq int64) ([]action.Entry, error)

	// LastSequence returns the largest assigned Seq, or 0 for an empty log.
	LastSequence(ctx context.Context) (int64, error)

	Close() error
}

func validateEntry(e action.Entry) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid entry kind %q", e.Kind)
	}
	if !e.Source.Valid() {
		return fmt.Errorf("invalid entry source %q", e.Source)
	}
	return nil
}
