package command

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/clica/internal/agent"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/config"
	"github.com/joeycumines/clica/internal/session"
	"github.com/joeycumines/clica/internal/storage"
	"github.com/joeycumines/clica/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyFile returns a file holding input, standing in for a non-terminal stdin.
func keyFile(t *testing.T, input string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys")
	require.NoError(t, os.WriteFile(path, []byte(input), 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func runConfig(t *testing.T, extra ...string) *config.Config {
	t.Helper()
	lines := append([]string{
		"session.backend memory",
		"actionlog.backend memory",
		"session.id run-test",
		"log.level debug",
	}, extra...)
	cfg, err := config.LoadFromReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	return cfg
}

func loadRunSession(t *testing.T) *storage.Session {
	t.Helper()
	id, _ := session.ID("run-test")
	b, err := storage.GetBackend("memory", id)
	require.NoError(t, err)
	s, err := b.LoadSession(id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func TestRunCommand_PersistsAndResumes(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)
	logFile := filepath.Join(t.TempDir(), "clica.log")

	cmd := NewRunCommand(runConfig(t), "", keyFile(t, "++"))
	cmd.logFile = logFile
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "clica")
	assert.Equal(t, 2, loadRunSession(t).Reward)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"session opened"`)
	assert.Contains(t, string(data), `"resumed":false`)

	cmd = NewRunCommand(runConfig(t), "", keyFile(t, "-"))
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Equal(t, 1, loadRunSession(t).Reward)
}

func TestRunCommand_InitialReward(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)

	cmd := NewRunCommand(runConfig(t, "reward.initial 5"), "", keyFile(t, ""))
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Equal(t, 5, loadRunSession(t).Reward)
}

func TestRunCommand_Autoload(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)

	dir := t.TempDir()
	vocab := codec.NewVocabulary()
	logger := slog.New(slog.DiscardHandler)
	factory := workspace.EditorFactory{Vocab: vocab, Logger: logger}
	require.NoError(t, agent.NewSuccessor(vocab, factory, 8, logger).Save(filepath.Join(dir, "model_abc123")))

	cfg := runConfig(t,
		"model.save-dir "+dir,
		"model.autoload true",
		"model.last-loaded model_abc123",
	)
	cmd := NewRunCommand(cfg, "", keyFile(t, ""))
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Equal(t, "model_abc123", loadRunSession(t).LoadedModel)
}

func TestRunCommand_AutoloadMissingModel(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)

	cfg := runConfig(t,
		"model.save-dir "+t.TempDir(),
		"model.autoload true",
		"model.last-loaded gone",
	)
	cmd := NewRunCommand(cfg, "", keyFile(t, ""))
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))
	assert.Empty(t, loadRunSession(t).LoadedModel)
}

func TestRunCommand_Errors(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)
	var stdout, stderr bytes.Buffer

	for name, tc := range map[string]struct {
		cfg  *config.Config
		args []string
		want string
	}{
		"bad int":         {cfg: runConfig(t, "agent.max-gen-length lots"), want: config.KeyMaxGenLength},
		"zero max":        {cfg: runConfig(t, "agent.max-gen-length 0"), want: "must be positive"},
		"bad duration":    {cfg: runConfig(t, "workspace.run-timeout soon"), want: config.KeyRunTimeout},
		"bad level":       {cfg: runConfig(t, "log.level loud"), want: "invalid log level"},
		"unknown backend": {cfg: runConfig(t, "session.backend tape"), want: "unknown storage backend"},
		"problems file":   {cfg: runConfig(t, "problems.file "+filepath.Join(t.TempDir(), "none.yaml")), want: "none.yaml"},
		"arguments":       {cfg: runConfig(t), args: []string{"x"}, want: "unexpected arguments"},
	} {
		t.Run(name, func(t *testing.T) {
			cmd := NewRunCommand(tc.cfg, "", keyFile(t, ""))
			err := cmd.Execute(tc.args, &stdout, &stderr)
			assert.ErrorContains(t, err, tc.want)
		})
	}

	cmd := NewRunCommand(runConfig(t), "", nil)
	assert.ErrorContains(t, cmd.Execute(nil, &stdout, &stderr), "no input")
}

func TestRunCommand_NewSession(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)

	cmd := NewRunCommand(runConfig(t), "", keyFile(t, "+"))
	cmd.newSession = true
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.Execute(nil, &stdout, &stderr))

	id, _ := session.ID("run-test")
	b, err := storage.GetBackend("memory", id)
	require.NoError(t, err)
	s, err := b.LoadSession(id)
	require.NoError(t, err)
	assert.Nil(t, s, "a new session does not touch the configured one")
}

func TestRunCommand_BadRunCommand(t *testing.T) {
	storage.ClearAllInMemorySessions()
	t.Cleanup(storage.ClearAllInMemorySessions)

	cmd := NewRunCommand(runConfig(t, `workspace.run-command sh -c "oops`), "", keyFile(t, ""))
	var stdout, stderr bytes.Buffer
	assert.ErrorContains(t, cmd.Execute(nil, &stdout, &stderr), config.KeyRunCommand)
}
