package selector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/clica/internal/terminal"
)

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(m tea.Model, msgs ...tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func TestList_Single(t *testing.T) {
	l := NewList("Pick", []string{"a", "b", "c"}, false)
	_, cmd := send(l, key(tea.KeyDown), runes("j"), runes("k"), key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, []string{"b"}, l.Chosen())
	assert.False(t, l.Canceled())
}

func TestList_MultiToggle(t *testing.T) {
	l := NewList("Pick", []string{"a", "b", "c"}, true)
	send(l, key(tea.KeySpace), key(tea.KeyDown), key(tea.KeyDown), key(tea.KeySpace),
		key(tea.KeyDown), key(tea.KeyUp), key(tea.KeyUp), key(tea.KeySpace), key(tea.KeySpace), key(tea.KeyEnter))
	assert.Equal(t, []string{"a", "c"}, l.Chosen())
	assert.Contains(t, l.View(), "[x] ")
}

func TestList_MultiDefaultsToCursor(t *testing.T) {
	l := NewList("Pick", []string{"a", "b"}, true)
	send(l, key(tea.KeyEnd), key(tea.KeyEnter))
	assert.Equal(t, []string{"b"}, l.Chosen())
}

func TestList_Cancel(t *testing.T) {
	for _, msg := range []tea.Msg{key(tea.KeyEsc), runes("q"), key(tea.KeyCtrlC)} {
		l := NewList("Pick", []string{"a"}, true)
		send(l, key(tea.KeySpace), msg)
		assert.True(t, l.Canceled())
		assert.Nil(t, l.Chosen())
	}
}

func TestList_Empty(t *testing.T) {
	l := NewList("Pick", nil, false)
	send(l, key(tea.KeyDown), key(tea.KeySpace), key(tea.KeyEnter))
	assert.Nil(t, l.Chosen())
	assert.Contains(t, l.View(), "nothing to choose from")
}

func TestList_ScrollWindow(t *testing.T) {
	var items []string
	for i := range 30 {
		items = append(items, fmt.Sprintf("item-%02d", i))
	}
	l := NewList("Pick", items, false)
	send(l, tea.WindowSizeMsg{Width: 80, Height: 9})
	require.Equal(t, 5, l.Height)

	for range 12 {
		send(l, key(tea.KeyDown))
	}
	assert.Equal(t, 12, l.cursor)
	assert.Equal(t, 8, l.offset)

	v := l.View()
	assert.Contains(t, v, "item-12")
	assert.NotContains(t, v, "item-07")
	assert.Contains(t, v, "13/30")

	send(l, key(tea.KeyHome))
	assert.Equal(t, 0, l.offset)
}

func TestScrollbar(t *testing.T) {
	bar := scrollbar(4, 4, 0, thumbStyle, trackStyle)
	assert.Equal(t, 4, strings.Count(bar, "\n")+1)
	assert.NotContains(t, bar, "│", "content fits: full thumb")

	bar = scrollbar(40, 4, 36, thumbStyle, trackStyle)
	lines := strings.Split(bar, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "│")
	assert.NotContains(t, lines[3], "│", "thumb at the bottom when fully scrolled")

	assert.Empty(t, scrollbar(10, 0, 0, thumbStyle, trackStyle))
}

func TestInput(t *testing.T) {
	in := NewInput("Name", "model_abc")
	_, cmd := send(in, key(tea.KeyBackspace), runes("z"), key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, "model_abz", in.Value())
	assert.False(t, in.Canceled())

	in = NewInput("Name", "x")
	send(in, key(tea.KeyEsc))
	assert.True(t, in.Canceled())
}

func TestPrompter_Select(t *testing.T) {
	var out bytes.Buffer
	p := Prompter{Keys: terminal.NewKeyReader(strings.NewReader("j\r")), Out: &out}
	got, err := p.Select(context.Background(), "Pick", []string{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)
}

func TestPrompter_ReadLine(t *testing.T) {
	var out bytes.Buffer
	p := Prompter{Keys: terminal.NewKeyReader(strings.NewReader("yz\r")), Out: &out}
	got, ok, err := p.ReadLine(context.Background(), "Name", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "xyz", got)
}

// A menu key and the prompt's text arrive in one read: the prompt gets the
// text and the keys after it stay with the caller.
func TestPrompter_SharesBufferedInput(t *testing.T) {
	ctx := context.Background()
	kr := terminal.NewKeyReader(strings.NewReader("pmy instruction\rt"))
	k, err := kr.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, terminal.Key("p"), k)

	var out bytes.Buffer
	p := Prompter{Keys: kr, Out: &out}
	got, ok, err := p.ReadLine(ctx, "Instruction", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "my instruction", got)

	k, err = kr.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, terminal.Key("t"), k)
}

func TestPrompter_EOF(t *testing.T) {
	var out bytes.Buffer
	p := Prompter{Keys: terminal.NewKeyReader(strings.NewReader("ab")), Out: &out}
	_, _, err := p.ReadLine(context.Background(), "Name", "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestKeyMsg(t *testing.T) {
	for k, want := range map[terminal.Key]tea.KeyMsg{
		"x":                   runes("x"),
		" ":                   runes(" "),
		terminal.KeyEnter:     key(tea.KeyEnter),
		terminal.KeyEscape:    key(tea.KeyEsc),
		terminal.Ctrl('c'):    key(tea.KeyCtrlC),
		terminal.KeyCtrlRight: key(tea.KeyCtrlRight),
	} {
		got, ok := keyMsg(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, got, k)
	}
	for _, k := range []terminal.Key{terminal.KeyResize, terminal.KeyUnknown} {
		_, ok := keyMsg(k)
		assert.False(t, ok, k)
	}
}
