package autoturn

import (
	"context"
	"errors"
	"testing"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eot action.ID = 10

type scriptPolicy struct {
	ids    []action.ID
	max    int
	states []any
	err    error
}

func (p *scriptPolicy) NextAction(_ context.Context, state any, _ workspace.Observation) (any, action.ID, error) {
	p.states = append(p.states, state)
	if p.err != nil {
		return nil, 0, p.err
	}
	i := len(p.states) - 1
	if i >= len(p.ids) {
		return i + 1, 99, nil
	}
	return i + 1, p.ids[i], nil
}

func (p *scriptPolicy) EndOfTurn() action.ID { return eot }
func (p *scriptPolicy) MaxGenLength() int    { return p.max }

func run(t *testing.T, p *scriptPolicy) (int, []action.Action, int, error) {
	t.Helper()
	var applied []action.Action
	renders := 0
	n, err := Driver{
		Policy:  p,
		Observe: func() workspace.Observation { return workspace.Observation{} },
		Apply: func(_ context.Context, a action.Action) error {
			applied = append(applied, a)
			return nil
		},
		Render: func() error { renders++; return nil },
	}.Run(context.Background())
	return n, applied, renders, err
}

func TestDriver_StopsAtEndOfTurn(t *testing.T) {
	p := &scriptPolicy{ids: []action.ID{20, 21, eot, 22}, max: 10}
	n, applied, renders, err := run(t, p)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []action.Action{
		{ID: 20, Source: action.SourceAgent},
		{ID: 21, Source: action.SourceAgent},
		{ID: eot, Source: action.SourceAgent},
	}, applied)
	assert.Equal(t, 3, renders)
	assert.Equal(t, []any{nil, 1, 2}, p.states, "recurrent state threads through, nil first")
}

func TestDriver_Cap(t *testing.T) {
	for _, limit := range []int{0, 1, 5} {
		n, applied, _, err := run(t, &scriptPolicy{max: limit})
		require.NoError(t, err)
		assert.Equal(t, limit, n)
		assert.Len(t, applied, limit)
	}
}

func TestDriver_PolicyError(t *testing.T) {
	n, applied, _, err := run(t, &scriptPolicy{max: 3, err: errors.New("model exploded")})
	assert.ErrorContains(t, err, "model exploded")
	assert.Zero(t, n)
	assert.Empty(t, applied)
}

func TestDriver_CanceledBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &scriptPolicy{max: 5}
	n, err := Driver{
		Policy:  p,
		Observe: func() workspace.Observation { return workspace.Observation{} },
		Apply: func(context.Context, action.Action) error {
			cancel()
			return nil
		},
	}.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
}
