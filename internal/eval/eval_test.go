package eval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/joeycumines/clica/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// typist emits the encoded text, then commit, then end of turn.
type typist struct {
	vocab *codec.Vocabulary
	text  string
	max   int
	panic bool
}

func (p typist) NextAction(_ context.Context, state any, _ workspace.Observation) (any, action.ID, error) {
	if p.panic {
		panic("policy bug")
	}
	i, _ := state.(int)
	ids := append(p.vocab.Encode(p.text), p.vocab.MustID(codec.Commit), p.EndOfTurn())
	return i + 1, ids[min(i, len(ids)-1)], nil
}

func (p typist) EndOfTurn() action.ID { return p.vocab.MustID(codec.EndOfTurn) }
func (p typist) MaxGenLength() int    { return p.max }

type echoRunner struct{}

func (echoRunner) Run(_ context.Context, code string) (string, error) { return "ran:" + code, nil }

func newRunner(p typist) Runner {
	return Runner{Policy: p, Vocab: p.vocab, Factory: workspace.EditorFactory{Vocab: p.vocab, Runner: echoRunner{}}}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestListItems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "instruction: x\n")
	writeFile(t, filepath.Join(dir, "a", ItemFile), "instruction: x\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0755))

	names, err := ListItems(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b.yaml"}, names)
}

func TestEvaluate_Pass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello")
	writeFile(t, filepath.Join(path, ItemFile), `
instruction: Say hi
code: "# "
run: true
pass: output == "ran:# hi" && actions == 4
`)
	v := codec.NewVocabulary()
	m, err := newRunner(typist{vocab: v, text: "hi", max: 10}).Evaluate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Actions)
	assert.Equal(t, "# hi", m.Code)
	require.NotNil(t, m.Passed)
	assert.True(t, *m.Passed)
}

func TestEvaluate_MaxActionsCapsTurn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cap.yaml")
	writeFile(t, path, "instruction: x\nmax_actions: 2\npass: code == \"\"\n")
	v := codec.NewVocabulary()
	m, err := newRunner(typist{vocab: v, text: "long text", max: 50}).Evaluate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Actions)
	assert.True(t, *m.Passed, "nothing committed within the cap")
}

func TestEvaluate_Errors(t *testing.T) {
	v := codec.NewVocabulary()
	r := newRunner(typist{vocab: v, max: 3})
	dir := t.TempDir()

	_, err := r.Evaluate(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "instruction: x\npass: output +\n")
	_, err = r.Evaluate(context.Background(), bad)
	assert.ErrorContains(t, err, "compile pass expression")

	noIns := filepath.Join(dir, "noins.yaml")
	writeFile(t, noIns, "code: x\n")
	_, err = r.Evaluate(context.Background(), noIns)
	assert.ErrorContains(t, err, "instruction is required")
}

func TestSafely_RecoversPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	writeFile(t, path, "instruction: x\n")
	v := codec.NewVocabulary()

	res := newRunner(typist{vocab: v, max: 3, panic: true}).Safely(context.Background(), path)
	assert.Equal(t, "p.yaml", res.Item)
	assert.ErrorContains(t, res.Err, "policy bug")
	assert.Contains(t, res.StackTrace, "goroutine")

	res = newRunner(typist{vocab: v, max: 3}).Safely(context.Background(), path)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.StackTrace)
	assert.Nil(t, res.Metrics.Passed)
}
