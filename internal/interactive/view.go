package interactive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const pressAnyKey = "Press any key to continue..."

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	queuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Underline(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	codeBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	titleCaser = cases.Title(language.English)
)

func stateTitle(id StateID) string {
	return titleCaser.String(strings.ReplaceAll(id.String(), "-", " "))
}

func header(id StateID) string {
	return titleStyle.Render("clica · " + stateTitle(id))
}

// page joins a header, body sections and the help strip of id.
func page(id StateID, sections ...string) string {
	parts := []string{header(id)}
	for _, sec := range sections {
		if sec != "" {
			parts = append(parts, sec)
		}
	}
	if st, ok := Lookup(id); ok && st.Commands != nil {
		parts = append(parts, helpStrip(st.Commands()))
	}
	return strings.Join(parts, "\n\n")
}

func helpStrip(bindings []Binding) string {
	items := make([]string, 0, len(bindings))
	for _, b := range bindings {
		items = append(items, helpKeyStyle.Render(b.Key)+" "+faintStyle.Render(b.Label))
	}
	return strings.Join(items, faintStyle.Render(" • "))
}

// workspaceView shows the instruction, the code with its cursor, and the
// last output. pending is typed text not yet flushed to the workspace.
func workspaceView(s *Session, pending string) string {
	obs := s.Workspace.Observation()
	var b strings.Builder
	b.WriteString(labelStyle.Render("Instruction: "))
	if obs.Instruction == "" {
		b.WriteString(faintStyle.Render("(none)"))
	} else {
		b.WriteString(obs.Instruction)
	}
	b.WriteString("\n")

	before, after := obs.SplitAtCursor()
	b.WriteString(codeBoxStyle.Render(renderCode(before, obs.TextQueue+pending, after)))

	if obs.Output != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Output:"))
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(obs.Output, "\n"))
	}
	return b.String()
}

// renderCode highlights the grapheme under the cursor. Queued text is shown
// where it will be inserted.
func renderCode(before, queued, after string) string {
	cursor, rest := " ", after
	if cluster, tail, _, _ := uniseg.FirstGraphemeClusterInString(after, -1); cluster != "" && cluster != "\n" && cluster != "\r\n" {
		cursor, rest = cluster, tail
	}
	out := before
	if queued != "" {
		out += queuedStyle.Render(queued)
	}
	return out + cursorStyle.Render(cursor) + rest
}

func statusLine(s *Session) string {
	model := s.LoadedModel
	if model == "" {
		model = "(none)"
	}
	line := faintStyle.Render(fmt.Sprintf("reward %d · model %s · trained through #%d",
		s.Reward, model, s.Tracker.LastSequence()))
	if s.Ring != nil {
		if e, ok := s.Ring.Latest(slog.LevelWarn); ok {
			line += "\n" + warnStyle.Render(e.Level.String()+": "+e.Message)
		}
	}
	return line
}

func renderBusy(msg string) func(*Session) string {
	return func(*Session) string { return faintStyle.Render(msg) }
}

func renderExit(*Session) string { return faintStyle.Render("Goodbye.") }

// pause shows view and waits for one key.
func (s *Session) pause(ctx context.Context, view string) error {
	if err := s.draw(view + "\n\n" + faintStyle.Render(pressAnyKey)); err != nil {
		return err
	}
	_, err := s.Keys.Next(ctx)
	return err
}

// showError reports a problem scoped to one user action and waits for a
// key, so control can return to the caller's next state.
func (s *Session) showError(ctx context.Context, id StateID, msg string) error {
	s.Logger.Warn(msg, "state", id.String())
	return s.pause(ctx, header(id)+"\n\n"+errorStyle.Render("Error: "+msg))
}
