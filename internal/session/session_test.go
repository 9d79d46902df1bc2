package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSessionID, "TMUX_PANE", "STY", "SSH_CONNECTION"} {
		t.Setenv(k, "")
	}
	orig := tmuxQuery
	tmuxQuery = func() (string, error) { return "", errors.New("no tmux") }
	t.Cleanup(func() { tmuxQuery = orig })
}

func TestID_Priority(t *testing.T) {
	clearEnv(t)
	t.Setenv("SSH_CONNECTION", "10.0.0.1 5555 10.0.0.2 22")
	t.Setenv("STY", "123.pts-0.host")

	id, src := ID("")
	assert.Equal(t, SourceScreen, src)
	assert.True(t, strings.HasPrefix(id, "screen--"))

	t.Setenv(EnvSessionID, "mine")
	id, src = ID("")
	assert.Equal(t, SourceEnv, src)
	assert.Equal(t, "ex--mine", id)

	id, src = ID("flagged")
	assert.Equal(t, SourceFlag, src)
	assert.Equal(t, "ex--flagged", id)
}

func TestID_Tmux(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMUX_PANE", "%3")
	tmuxQuery = func() (string, error) { return "$1:@2:%3", nil }

	id, src := ID("")
	assert.Equal(t, SourceTmux, src)
	assert.Equal(t, "tmux--s1.w2.p3", id)
}

func TestID_TmuxFailureFallsThrough(t *testing.T) {
	clearEnv(t)
	t.Setenv("TMUX_PANE", "%3")
	t.Setenv("SSH_CONNECTION", "a b c d")

	_, src := ID("")
	assert.Equal(t, SourceSSH, src)
}

func TestID_Default(t *testing.T) {
	clearEnv(t)
	id, src := ID("")
	assert.Equal(t, SourceDefault, src)
	assert.Equal(t, "default--local", id)
}

func TestID_Stable(t *testing.T) {
	clearEnv(t)
	t.Setenv("SSH_CONNECTION", "10.0.0.1 5555 10.0.0.2 22")
	a, _ := ID("")
	b, _ := ID("")
	assert.Equal(t, a, b)
}

func TestFormatExplicitID(t *testing.T) {
	assert.Equal(t, "ex--a_b", formatExplicitID("a/b"))
	assert.Equal(t, "my_ns--x", formatExplicitID("my ns--x"))
}

func TestFormat_TruncatesWithHash(t *testing.T) {
	long := strings.Repeat("x", 200)
	id := format(NamespaceExplicit, long)
	require.Len(t, id, MaxIDLength)

	other := format(NamespaceExplicit, long+"y")
	assert.NotEqual(t, id, other)
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "uuid--"))
}
