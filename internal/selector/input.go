package selector

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Input reads one line, starting from an editable default.
type Input struct {
	Title string

	ti       textinput.Model
	done     bool
	canceled bool
}

// NewInput returns a focused line input holding initial.
func NewInput(title, initial string) *Input {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()
	return &Input{Title: title, ti: ti}
}

func (m *Input) Init() tea.Cmd { return textinput.Blink }

func (m *Input) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.canceled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Input) View() string {
	return titleStyle.Render(m.Title) + "\n\n" + m.ti.View() + "\n\n" + helpStyle.Render("enter accept • esc cancel")
}

// Value returns the current text.
func (m *Input) Value() string { return m.ti.Value() }

// Canceled reports whether the prompt was dismissed.
func (m *Input) Canceled() bool { return m.canceled }

// Done reports whether the prompt was accepted or dismissed.
func (m *Input) Done() bool { return m.done || m.canceled }
