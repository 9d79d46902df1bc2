package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingHandler(t *testing.T) {
	h := NewRingHandler(3, slog.LevelInfo)
	log := slog.New(h).With("run", "r1").WithGroup("g")

	log.Debug("hidden")
	for _, m := range []string{"one", "two", "three", "four"} {
		log.Info(m, "k", m)
	}
	log.Warn("careful")

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "three", entries[0].Message)
	assert.Equal(t, "r1", entries[0].Attrs["run"])
	assert.Equal(t, "three", entries[0].Attrs["g.k"])

	w, ok := h.Latest(slog.LevelWarn)
	require.True(t, ok)
	assert.Equal(t, "careful", w.Message)

	h.Clear()
	_, ok = h.Latest(slog.LevelDebug)
	assert.False(t, ok)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetup_FanOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clica.log")
	l, err := Setup(Options{Level: "debug", File: path, BufferSize: 10})
	require.NoError(t, err)

	l.Logger.Debug("hello", "n", 1)
	require.NoError(t, l.Close())

	assert.Len(t, l.Ring.Entries(), 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec))
	assert.Equal(t, "hello", rec["msg"])

	l.Level.Set(slog.LevelError)
	l.Logger.Warn("dropped")
	assert.Len(t, l.Ring.Entries(), 1)
}

func TestRotatingFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := NewRotatingFileWriter(path, 1, 2)
	require.NoError(t, err)

	chunk := []byte(strings.Repeat("x", 600*1024))
	for range 4 {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	for _, p := range []string{path, path + ".1", path + ".2"} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Equal(t, int64(len(chunk)), info.Size(), p)
	}
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))

	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
