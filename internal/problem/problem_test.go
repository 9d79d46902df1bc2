package problem

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_Defaults(t *testing.T) {
	b := NewBank(nil, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, Defaults, b.Problems())

	ins, err := b.Generate(context.Background())
	require.NoError(t, err)
	sol, err := b.Solve(context.Background(), "  "+ins+"\n", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, sol)
}

func TestBank_SolveUnknown(t *testing.T) {
	b := NewBank(nil, nil)
	_, err := b.Solve(context.Background(), "write a compiler", "", "")
	assert.ErrorIs(t, err, ErrNoSolution)
}

func TestLoadBank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "problems.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- instruction: Print 7
  solution: |
    print(7)
`), 0644))

	b, err := LoadBank(path, nil)
	require.NoError(t, err)
	ins, err := b.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Print 7", ins)
	sol, err := b.Solve(context.Background(), "print 7", "", "")
	require.NoError(t, err)
	assert.Equal(t, "print(7)\n", sol)

	require.NoError(t, os.WriteFile(path, []byte("- solution: x\n"), 0644))
	_, err = LoadBank(path, nil)
	assert.ErrorContains(t, err, "no instruction")

	_, err = LoadBank(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestBank_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBank(nil, nil).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
