// Package logging configures slog for a full-screen terminal program,
// where nothing may be written to the terminal while it runs.
package logging

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Entry is one record kept by a RingHandler.
type Entry struct {
	Time    time.Time         `json:"time"`
	Level   slog.Level        `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

type ring struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
}

// RingHandler keeps the most recent records in memory, so the views can
// surface them.
type RingHandler struct {
	r      *ring
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewRingHandler keeps up to size records at or above level.
func NewRingHandler(size int, level slog.Leveler) *RingHandler {
	if size <= 0 {
		size = 200
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &RingHandler{r: &ring{max: size}, level: level}
}

func (h *RingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *RingHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.String()
	}
	record.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.String()
		return true
	})
	e := Entry{Time: record.Time, Level: record.Level, Message: record.Message}
	if len(attrs) > 0 {
		e.Attrs = attrs
	}

	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	h.r.entries = append(h.r.entries, e)
	if over := len(h.r.entries) - h.r.max; over > 0 {
		h.r.entries = slices.Delete(h.r.entries, 0, over)
	}
	return nil
}

func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *RingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// Entries returns a copy of every kept record, oldest first.
func (h *RingHandler) Entries() []Entry {
	h.r.mu.RLock()
	defer h.r.mu.RUnlock()
	return slices.Clone(h.r.entries)
}

// Latest returns the newest record at or above level.
func (h *RingHandler) Latest(level slog.Level) (Entry, bool) {
	h.r.mu.RLock()
	defer h.r.mu.RUnlock()
	for i := len(h.r.entries) - 1; i >= 0; i-- {
		if h.r.entries[i].Level >= level {
			return h.r.entries[i], true
		}
	}
	return Entry{}, false
}

// Clear drops every kept record.
func (h *RingHandler) Clear() {
	h.r.mu.Lock()
	h.r.entries = h.r.entries[:0]
	h.r.mu.Unlock()
}

var _ slog.Handler = (*RingHandler)(nil)
