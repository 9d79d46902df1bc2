package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/clica/internal/action"
)

func TestVocabulary_CommandIDsAreStable(t *testing.T) {
	v := NewVocabulary()
	for i, c := range Commands {
		id, ok := v.IDFor(c)
		require.True(t, ok, c)
		assert.Equal(t, action.ID(i), id)
		assert.True(t, v.IsCommand(id))
		assert.Equal(t, string(c), v.Decode(id))
	}
	_, ok := v.IDFor("<nope>")
	assert.False(t, ok)
}

func TestVocabulary_Encode(t *testing.T) {
	v := NewVocabulary()
	assert.Nil(t, v.Encode(""))

	ids := v.Encode("hé\n")
	require.Len(t, ids, 3)
	for _, id := range ids {
		assert.False(t, v.IsCommand(id))
	}
	assert.Equal(t, "hé\n", v.Text(ids))
	assert.Equal(t, "hé\n", v.DecodeAll(ids))

	// deterministic
	assert.Equal(t, ids, v.Encode("hé\n"))
}

func TestVocabulary_TextDropsCommands(t *testing.T) {
	v := NewVocabulary()
	ids := append(v.Encode("ab"), v.MustID(Commit))
	assert.Equal(t, "ab", v.Text(ids))
	assert.Equal(t, "ab<commit>", v.DecodeAll(ids))
}

func TestVocabulary_DecodeUnknown(t *testing.T) {
	v := NewVocabulary()
	assert.Equal(t, "<unk:-1>", v.Decode(-1))
}
