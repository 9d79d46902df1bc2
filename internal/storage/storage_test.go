package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/checkpoint"
	"github.com/joeycumines/clica/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetTestPaths(dir)
	t.Cleanup(ResetPaths)
	return dir
}

func keyEntry(id action.ID) action.Entry {
	return action.Entry{RunID: "run", Kind: action.KindKey, Source: action.SourceHuman, ActionID: id, Payload: "x"}
}

func testActionLog(t *testing.T, open func() ActionLog) {
	ctx := context.Background()
	l := open()

	seq, err := l.LastSequence(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq)

	var got []int64
	for i := range 3 {
		e, err := l.Append(ctx, keyEntry(action.ID(i)))
		require.NoError(t, err)
		assert.False(t, e.Time.IsZero())
		got = append(got, e.Seq)
	}
	assert.True(t, got[0] < got[1] && got[1] < got[2], "strictly increasing: %v", got)

	after, err := l.EntriesAfter(ctx, got[0])
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, got[1], after[0].Seq)
	assert.Equal(t, action.ID(2), after[1].ActionID)

	none, err := l.EntriesAfter(ctx, got[2])
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = l.Append(ctx, action.Entry{Kind: "bogus", Source: action.SourceHuman})
	assert.Error(t, err)

	last, err := l.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, got[2], last)

	require.NoError(t, l.Close())
	_, err = l.Append(ctx, keyEntry(0))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryLog(t *testing.T) {
	testActionLog(t, func() ActionLog { return NewMemoryLog() })
}

func TestSQLiteLog(t *testing.T) {
	testActionLog(t, func() ActionLog {
		l, err := OpenSQLiteLog(filepath.Join(t.TempDir(), "actions.db"))
		require.NoError(t, err)
		return l
	})
}

func TestSQLiteLog_SequenceSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "actions.db")

	l, err := OpenSQLiteLog(path)
	require.NoError(t, err)
	first, err := l.Append(ctx, action.Entry{Kind: action.KindSetInstruction, Source: action.SourceAgent, Payload: "sort a list"})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = OpenSQLiteLog(path)
	require.NoError(t, err)
	defer l.Close()
	second, err := l.Append(ctx, keyEntry(5))
	require.NoError(t, err)
	assert.Greater(t, second.Seq, first.Seq)

	all, err := l.EntriesAfter(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, action.KindSetInstruction, all[0].Kind)
	assert.Equal(t, action.SourceAgent, all[0].Source)
	assert.Equal(t, "sort a list", all[0].Payload)
}

func TestSQLiteLog_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.db")
	l, err := OpenSQLiteLog(path)
	require.NoError(t, err)
	defer l.Close()

	_, err = OpenSQLiteLog(path)
	assert.ErrorIs(t, err, ErrWouldBlock)
}

func TestFileSystemBackend(t *testing.T) {
	setupTest(t)

	t.Run("missing session", func(t *testing.T) {
		b, err := NewFileSystemBackend("missing")
		require.NoError(t, err)
		defer b.Close()
		s, err := b.LoadSession("missing")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := NewFileSystemBackend("")
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		b, err := NewFileSystemBackend("rt")
		require.NoError(t, err)

		in := &Session{
			ID:          "rt",
			Workspace:   workspace.Snapshot{Code: "x = 1", Cursor: 5},
			Reward:      3,
			LoadedModel: "model_abc123",
			Checkpoint: checkpoint.State{
				LastSequence: 42,
				Snapshot:     workspace.Snapshot{Instruction: []action.ID{20, 21}, Code: "x"},
			},
		}
		require.NoError(t, b.SaveSession(in))
		require.NoError(t, b.Close())

		b, err = NewFileSystemBackend("rt")
		require.NoError(t, err)
		defer b.Close()
		out, err := b.LoadSession("rt")
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, currentSchemaVersion, out.Version)
		assert.Equal(t, 3, out.Reward)
		assert.Equal(t, "model_abc123", out.LoadedModel)
		assert.Equal(t, int64(42), out.Checkpoint.LastSequence)
		assert.Equal(t, []action.ID{20, 21}, out.Checkpoint.Snapshot.Instruction)
		assert.Equal(t, "x = 1", out.Workspace.Code)
	})

	t.Run("lock held", func(t *testing.T) {
		b, err := NewFileSystemBackend("held")
		require.NoError(t, err)
		defer b.Close()
		_, err = NewFileSystemBackend("held")
		assert.ErrorIs(t, err, ErrWouldBlock)
	})

	t.Run("id mismatch", func(t *testing.T) {
		b, err := NewFileSystemBackend("mine")
		require.NoError(t, err)
		defer b.Close()
		assert.Error(t, b.SaveSession(&Session{ID: "theirs"}))
		_, err = b.LoadSession("theirs")
		assert.Error(t, err)
	})
}

func TestInMemoryBackend(t *testing.T) {
	ClearAllInMemorySessions()
	t.Cleanup(ClearAllInMemorySessions)

	b, err := GetBackend("memory", "m")
	require.NoError(t, err)
	s := &Session{ID: "m", Reward: 1}
	require.NoError(t, b.SaveSession(s))
	s.Reward = 99

	got, err := b.LoadSession("m")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Reward)
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := GetBackend("nope", "x")
	assert.ErrorContains(t, err, "unknown storage backend")
	_, err = OpenLog("nope", "")
	assert.ErrorContains(t, err, "unknown action log backend")
}

func TestOpenLog_DefaultPath(t *testing.T) {
	dir := setupTest(t)
	l, err := OpenLog("sqlite", "")
	require.NoError(t, err)
	defer l.Close()
	_, err = os.Stat(filepath.Join(dir, "actions.db"))
	assert.NoError(t, err)
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.txt")
	require.NoError(t, AtomicWriteFile(path, []byte("one"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("two"), 0600))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	t.Run("crash before rename keeps old contents", func(t *testing.T) {
		testHookCrashBeforeRename = func() { panic("crash") }
		defer func() { testHookCrashBeforeRename = nil }()
		assert.Panics(t, func() { _ = AtomicWriteFile(path, []byte("three"), 0644) })

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "two", string(data))
		leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".tmp-clica-*"))
		assert.Empty(t, leftovers)
	})
}

func TestLockFor_WrapsWouldBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lock")
	f, err := lockFor(path, "thing")
	require.NoError(t, err)
	defer releaseFileLock(f)

	_, err = lockFor(path, "thing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWouldBlock))
	assert.Contains(t, err.Error(), "thing is in use")
}

func TestScanAndDeleteSessions(t *testing.T) {
	setupTest(t)

	infos, err := ScanSessions()
	require.NoError(t, err)
	assert.Empty(t, infos)

	for _, id := range []string{"old", "new"} {
		b, err := NewFileSystemBackend(id)
		require.NoError(t, err)
		require.NoError(t, b.SaveSession(&Session{ID: id, Reward: len(id)}))
		require.NoError(t, b.Close())
	}
	held, err := NewFileSystemBackend("new")
	require.NoError(t, err)

	infos, err = ScanSessions()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "new", infos[0].ID)
	assert.True(t, infos[0].Active)
	assert.Equal(t, 3, infos[0].Reward)
	assert.Equal(t, "old", infos[1].ID)
	assert.False(t, infos[1].Active)
	assert.Positive(t, infos[1].Size)

	assert.ErrorIs(t, DeleteSession("new"), ErrWouldBlock)
	require.NoError(t, held.Close())
	require.NoError(t, DeleteSession("new"))
	assert.ErrorContains(t, DeleteSession("new"), "not found")

	infos, err = ScanSessions()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "old", infos[0].ID)
}
