// Package help renders the keyboard reference overlay. The text is built as
// markdown from the active key bindings and rendered with glamour.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/awx-monitor/tui/internal/theme"
)

// DefaultStyle is the glamour style used when none is given.
const DefaultStyle = "dark"

const intro = `Watches the AWX jobs listing. Fill in the controller URL, username
and password, then connect. While connected the listing refreshes every
%s unless auto-refresh is off.

The URL and username are remembered between runs. The password never leaves
memory.`

// Section groups bindings under a heading.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Model holds the rendered help text.
type Model struct {
	style    string
	interval string
	sections []Section

	width    int
	rendered string
	err      error
}

// New creates a help model. style is a glamour standard style name;
// interval is shown in the introduction.
func New(style, interval string, sections ...Section) Model {
	if style == "" {
		style = DefaultStyle
	}
	return Model{style: style, interval: interval, sections: sections}
}

// Markdown returns the source text of the overlay.
func (m Model) Markdown() string {
	var b strings.Builder
	b.WriteString("# AWX Monitor\n\n")
	fmt.Fprintf(&b, intro, m.interval)
	b.WriteString("\n")
	for _, s := range m.sections {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Title)
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, kb := range s.Bindings {
			if !kb.Enabled() {
				continue
			}
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	return b.String()
}

// SetWidth re-renders for the given terminal width.
func (m *Model) SetWidth(width int) {
	if width == m.width && m.rendered != "" {
		return
	}
	m.width = width
	m.rendered, m.err = m.render()
}

func (m Model) render() (string, error) {
	wrap := m.width - 8
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", err
	}
	return r.Render(m.Markdown())
}

// View renders the overlay. When glamour fails the raw markdown is shown.
func (m Model) View() string {
	body := m.rendered
	if body == "" {
		if m.err == nil {
			body, m.err = m.render()
		}
		if m.err != nil {
			body = m.Markdown() + "\n" + theme.StyleError.Render(m.err.Error())
		}
	}
	footer := theme.StyleDimmed.Render("esc:close")
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(strings.TrimRight(body, "\n") + "\n" + footer)
}
