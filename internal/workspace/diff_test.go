package workspace

import (
	"testing"

	"github.com/joeycumines/clica/internal/codec"
	"github.com/stretchr/testify/assert"
)

func TestEditActions(t *testing.T) {
	for _, tc := range []struct {
		name    string
		current string
		cursor  int
		target  string
	}{
		{"empty to text", "", 0, "print('hi')"},
		{"identical", "same", 2, "same"},
		{"replace middle", "a = 1\nb = 2\n", 0, "a = 1\nb = 3\n"},
		{"delete all", "gone", 4, ""},
		{"cursor past edit", "abcdef", 6, "abXYef"},
		{"unicode", "héllo", 1, "hallo wörld"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := codec.NewVocabulary()
			e := EditorFactory{Vocab: v}.Restore(Snapshot{Code: tc.current, Cursor: tc.cursor}).(*Editor)
			applyAll(t, e, EditActions(v, tc.current, tc.cursor, tc.target))
			obs := e.Observation()
			assert.Equal(t, tc.target, obs.Code)
			assert.Equal(t, "", obs.TextQueue)
		})
	}
}

func TestEditActions_NoopForIdentical(t *testing.T) {
	v := codec.NewVocabulary()
	assert.Empty(t, EditActions(v, "x", 1, "x"))
}
