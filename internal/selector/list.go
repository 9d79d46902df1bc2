// Package selector provides the single-select, multi-select and line input
// prompts, as bubbletea programs.
package selector

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultListHeight = 10

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	thumbStyle    = lipgloss.NewStyle().Background(lipgloss.Color("57"))
	trackStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// List picks one or more items.
type List struct {
	Title string
	Items []string
	Multi bool
	// Height is the number of visible rows.
	Height int

	cursor   int
	offset   int
	selected map[int]bool
	done     bool
	canceled bool
}

// NewList returns a list prompt with the cursor on the first item.
func NewList(title string, items []string, multi bool) *List {
	return &List{
		Title:    title,
		Items:    items,
		Multi:    multi,
		Height:   defaultListHeight,
		selected: make(map[int]bool),
	}
}

func (m *List) Init() tea.Cmd { return nil }

func (m *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-4, 1)
		m.scroll()
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "home", "g":
			m.move(-len(m.Items))
		case "end", "G":
			m.move(len(m.Items))
		case " ", "x":
			if m.Multi && len(m.Items) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		case "esc", "q", "ctrl+c":
			m.canceled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *List) move(delta int) {
	if len(m.Items) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.Items)-1)
	m.scroll()
}

func (m *List) scroll() {
	h := max(m.Height, 1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = min(m.offset, max(len(m.Items)-h, 0))
}

func (m *List) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n\n")
	if len(m.Items) == 0 {
		b.WriteString(helpStyle.Render("(nothing to choose from)"))
		b.WriteString("\n")
	}

	h := max(m.Height, 1)
	end := min(m.offset+h, len(m.Items))
	var rows []string
	for i := m.offset; i < end; i++ {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		item := m.Items[i]
		if m.Multi {
			mark := "[ ] "
			if m.selected[i] {
				mark = "[x] "
				item = selectedStyle.Render(item)
			}
			prefix += mark
		}
		rows = append(rows, prefix+item)
	}
	if len(rows) > 0 {
		body := strings.Join(rows, "\n")
		if len(m.Items) > h {
			bar := scrollbar(len(m.Items), len(rows), m.offset, thumbStyle, trackStyle)
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", bar)
		}
		b.WriteString(body)
		b.WriteString("\n")
	}

	help := "↑/↓ move • enter choose • esc cancel"
	if m.Multi {
		help = "↑/↓ move • space toggle • enter confirm • esc cancel"
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))
	if len(m.Items) > h {
		b.WriteString(helpStyle.Render(fmt.Sprintf(" • %d/%d", m.cursor+1, len(m.Items))))
	}
	return b.String()
}

// Canceled reports whether the prompt was dismissed.
func (m *List) Canceled() bool { return m.canceled }

// Done reports whether the prompt was confirmed or dismissed.
func (m *List) Done() bool { return m.done || m.canceled }

// Chosen returns the chosen items in list order. A multi-select with
// nothing toggled chooses the highlighted item.
func (m *List) Chosen() []string {
	if !m.done || len(m.Items) == 0 {
		return nil
	}
	if !m.Multi {
		return []string{m.Items[m.cursor]}
	}
	var out []string
	for i, item := range m.Items {
		if m.selected[i] {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		out = []string{m.Items[m.cursor]}
	}
	return out
}
