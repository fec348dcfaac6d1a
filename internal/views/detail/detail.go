// Package detail renders the job detail overlay.
package detail

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/awx-monitor/tui/internal/awx"
	"github.com/awx-monitor/tui/internal/theme"
	"github.com/awx-monitor/tui/internal/views/jobs"
)

const (
	panelWidth = 64
	labelWidth = 14
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)

	styleExplanation = lipgloss.NewStyle().
				Foreground(theme.ColorWarning).
				Width(panelWidth - 4)
)

// Model holds the state for the detail overlay.
type Model struct {
	Job *awx.Job
}

// New creates a detail model for j.
func New(j awx.Job) Model {
	return Model{Job: &j}
}

// Refresh swaps in the newest snapshot of the shown job, if it is still in
// the listing.
func (m *Model) Refresh(list []awx.Job) {
	if m.Job == nil {
		return
	}
	for i := range list {
		if list[i].ID == m.Job.ID {
			j := list[i]
			m.Job = &j
			return
		}
	}
}

// View renders the detail panel. Returns an empty string if no job is set.
func (m Model) View() string {
	if m.Job == nil {
		return ""
	}
	return stylePanel.Width(panelWidth).Render(renderInner(*m.Job))
}

func renderInner(j awx.Job) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Job #"+strconv.Itoa(j.ID)) + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	writeRow(&b, "Name", truncate(j.Name, panelWidth-labelWidth-4))
	writeRow(&b, "Type", orDash(j.Type))
	b.WriteString(styleLabel.Render("Status:") + theme.StatusBadge(string(j.Status)) + "\n")
	writeRow(&b, "Launch Type", orDash(j.LaunchType))

	b.WriteString("\n")

	writeRow(&b, "Started", jobs.FormatTime(j.Started))
	writeRow(&b, "Finished", jobs.FormatTime(j.Finished))
	writeRow(&b, "Elapsed", jobs.FormatElapsed(j.Elapsed))

	if j.JobExplanation != "" {
		b.WriteString("\n")
		b.WriteString(styleExplanation.Render(j.JobExplanation) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleFooter.Render("[esc] close"))
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
