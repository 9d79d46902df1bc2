package command

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/joeycumines/clica/internal/config"
	"github.com/joeycumines/clica/internal/session"
	"github.com/joeycumines/clica/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessions(t *testing.T, ids ...string) {
	t.Helper()
	storage.SetTestPaths(t.TempDir())
	t.Cleanup(storage.ResetPaths)
	for _, id := range ids {
		b, err := storage.NewFileSystemBackend(id)
		require.NoError(t, err)
		require.NoError(t, b.SaveSession(&storage.Session{ID: id, Reward: 7, LoadedModel: "model_x"}))
		require.NoError(t, b.Close())
	}
}

func TestSessionCommand_List(t *testing.T) {
	setupSessions(t, "one")
	cmd := NewSessionCommand(config.NewConfig())
	cmd.format = "text"

	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	out := stdout.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "model_x")
	assert.Contains(t, out, "idle")

	cmd.format = "json"
	stdout.Reset()
	require.NoError(t, cmd.Execute([]string{"list"}, &stdout, &stderr))
	var infos []storage.SessionInfo
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, 7, infos[0].Reward)

	cmd.format = "yaml"
	assert.Error(t, cmd.Execute([]string{"list"}, &stdout, &stderr))
}

func TestSessionCommand_ListEmpty(t *testing.T) {
	setupSessions(t)
	cmd := NewSessionCommand(config.NewConfig())
	cmd.format = "text"
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute([]string{"list"}, &stdout, &stderr))
	assert.Equal(t, "No sessions found\n", stdout.String())

	cmd.format = "json"
	stdout.Reset()
	require.NoError(t, cmd.Execute([]string{"list"}, &stdout, &stderr))
	assert.Equal(t, "[]\n", stdout.String())
}

func TestSessionCommand_Delete(t *testing.T) {
	setupSessions(t, "one", "two")
	cmd := NewSessionCommand(config.NewConfig())

	var stdout, stderr bytes.Buffer
	err := cmd.Execute([]string{"delete", "one", "missing"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "1 session(s) not deleted")
	assert.Equal(t, "deleted one\n", stdout.String())
	assert.Contains(t, stderr.String(), "missing")

	infos, err := storage.ScanSessions()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "two", infos[0].ID)

	assert.Error(t, cmd.Execute([]string{"delete"}, &stdout, &stderr))
}

func TestSessionCommand_IDAndPath(t *testing.T) {
	setupSessions(t)
	t.Setenv(session.EnvSessionID, "")
	cfg, err := config.LoadFromReader(strings.NewReader("session.id work\n"))
	require.NoError(t, err)
	cmd := NewSessionCommand(cfg)

	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute([]string{"id"}, &stdout, &stderr))
	want, _ := session.ID("work")
	assert.Equal(t, want+"\t(explicit-flag)\n", stdout.String())

	stdout.Reset()
	require.NoError(t, cmd.Execute([]string{"path", "abc"}, &stdout, &stderr))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout.String()), "abc.session.json"))

	assert.Error(t, cmd.Execute([]string{"path"}, &stdout, &stderr))
	assert.Error(t, cmd.Execute([]string{"bogus"}, &stdout, &stderr))
}
