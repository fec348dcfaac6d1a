package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/awx-monitor/tui/internal/session"
	"github.com/awx-monitor/tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Status      session.Status
	AutoRefresh bool
	Polling     bool
	Jobs        int
	Width       int
}

// New creates a status bar model.
func New() Model {
	return Model{
		Status:      session.Status{Text: "Not Connected", Tone: session.ToneMuted},
		AutoRefresh: true,
	}
}

// ToneColor maps a connectivity tone to its color.
func ToneColor(t session.Tone) lipgloss.Color {
	switch t {
	case session.ToneHealthy:
		return theme.ColorHealthy
	case session.ToneBusy:
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	glyph := "○"
	if m.Status.Tone == session.ToneHealthy {
		glyph = "●"
	}
	connStr := lipgloss.NewStyle().Foreground(ToneColor(m.Status.Tone)).Render(glyph + " " + m.Status.Text)

	var refresh string
	switch {
	case !m.AutoRefresh:
		refresh = theme.StyleDimmed.Render("auto-refresh off")
	case m.Polling:
		refresh = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("auto-refresh on")
	default:
		refresh = theme.StyleDimmed.Render("auto-refresh armed")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + refresh
	if m.Status.Tone == session.ToneHealthy {
		content += sep + fmt.Sprintf("%d jobs", m.Jobs)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
