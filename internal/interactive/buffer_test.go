package interactive

import (
	"testing"

	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_Flush(t *testing.T) {
	v := codec.NewVocabulary()
	b := NewBuffer(v)
	commit := v.MustID(codec.Commit)

	assert.Empty(t, b.Flush())

	b.Append("h")
	b.Append("i")
	assert.Equal(t, "hi", b.Text())
	assert.Equal(t, append(v.Encode("hi"), commit), b.Flush())
	assert.True(t, b.Empty())
	assert.Empty(t, b.Flush())
}

func TestBuffer_FlushCommit(t *testing.T) {
	v := codec.NewVocabulary()
	b := NewBuffer(v)
	assert.Equal(t, []action.ID{v.MustID(codec.Commit)}, b.FlushCommit())
}

func TestBuffer_FlushWith(t *testing.T) {
	v := codec.NewVocabulary()
	b := NewBuffer(v)
	left := v.MustID(codec.Left)

	assert.Equal(t, []action.ID{left}, b.FlushWith(left))

	b.Append("ab")
	want := append(v.Encode("ab"), v.MustID(codec.Commit), left)
	assert.Equal(t, want, b.FlushWith(left))
	assert.True(t, b.Empty())
}

func TestBuffer_Queue(t *testing.T) {
	v := codec.NewVocabulary()
	b := NewBuffer(v)
	assert.Equal(t, ModeCollecting, b.Mode())

	b.Append("x")
	b.Enqueue(b.Flush()...)
	b.Enqueue(v.MustID(codec.Run))
	assert.Equal(t, ModeDraining, b.Mode())
	assert.Equal(t, 3, b.Queued())

	var got []action.ID
	for {
		id, ok := b.Pop()
		if !ok {
			break
		}
		got = append(got, id)
	}
	assert.Equal(t, []action.ID{v.Encode("x")[0], v.MustID(codec.Commit), v.MustID(codec.Run)}, got)
	assert.Equal(t, ModeCollecting, b.Mode())
}

func TestBuffer_Reset(t *testing.T) {
	v := codec.NewVocabulary()
	b := NewBuffer(v)
	b.Append("abc")
	b.Enqueue(1, 2)
	b.Reset()
	assert.True(t, b.Empty())
	assert.Zero(t, b.Queued())
	require.Equal(t, "collecting", b.Mode().String())
}
