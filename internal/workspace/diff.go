package workspace

import (
	"github.com/joeycumines/clica/internal/action"
	"github.com/joeycumines/clica/internal/codec"
)

// EditActions returns an action sequence that turns current into target,
// starting with the cursor at the given rune offset and an empty text queue.
// Only the span between the common prefix and common suffix is rewritten.
func EditActions(vocab *codec.Vocabulary, current string, cursor int, target string) []action.ID {
	cur, tgt := []rune(current), []rune(target)
	cursor = min(max(cursor, 0), len(cur))

	p := 0
	for p < len(cur) && p < len(tgt) && cur[p] == tgt[p] {
		p++
	}
	s := 0
	for s < len(cur)-p && s < len(tgt)-p && cur[len(cur)-1-s] == tgt[len(tgt)-1-s] {
		s++
	}

	var ids []action.ID
	end := len(cur) - s
	for ; cursor < end; cursor++ {
		ids = append(ids, vocab.MustID(codec.Right))
	}
	for ; cursor > end; cursor-- {
		ids = append(ids, vocab.MustID(codec.Left))
	}
	for range end - p {
		ids = append(ids, vocab.MustID(codec.Backspace))
	}
	if insert := tgt[p : len(tgt)-s]; len(insert) > 0 {
		ids = append(ids, vocab.Encode(string(insert))...)
		ids = append(ids, vocab.MustID(codec.Commit))
	}
	return ids
}
