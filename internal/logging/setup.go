package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures Setup.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// File, when set, receives JSON records with size-based rotation.
	File       string
	MaxSizeMB  int
	MaxFiles   int
	BufferSize int
}

// Logging is the configured logger and its sinks.
type Logging struct {
	Logger *slog.Logger
	Ring   *RingHandler
	Level  *slog.LevelVar

	closer io.Closer
}

// ParseLevel parses a level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
}

// Setup fans records out to an in-memory ring and, optionally, a rotating
// JSON log file.
func Setup(opts Options) (*Logging, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)

	ring := NewRingHandler(opts.BufferSize, level)
	handlers := []slog.Handler{ring}

	var closer io.Closer
	if opts.File != "" {
		w, err := NewRotatingFileWriter(opts.File, opts.MaxSizeMB, opts.MaxFiles)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
		closer = w
	}

	return &Logging{
		Logger: slog.New(slogmulti.Fanout(handlers...)),
		Ring:   ring,
		Level:  level,
		closer: closer,
	}, nil
}

// Close flushes and closes the log file, if any.
func (l *Logging) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
