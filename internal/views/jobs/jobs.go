// Package jobs renders the jobs listing as a table with a last-updated label.
// Each poll replaces the rows wholesale.
package jobs

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/awx-monitor/tui/internal/awx"
	"github.com/awx-monitor/tui/internal/theme"
)

// EmptyText is shown in place of rows when the listing is empty.
const EmptyText = "No jobs found"

const timeLayout = "2006-01-02 15:04:05"

// Model holds the jobs table state. It satisfies poller.Renderer through its
// pointer methods.
type Model struct {
	Width  int
	Height int

	table   table.Model
	jobs    []awx.Job
	loaded  bool
	label   string
	failed  bool
	expired bool
}

// New creates an empty jobs table.
func New() Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.ColorBright).
		Background(theme.ColorAccent).
		Bold(false)
	t.SetStyles(s)
	return Model{table: t}
}

// columns sizes the grid to the available width. Name absorbs the slack.
func columns(width int) []table.Column {
	const (
		colID     = 8
		colStatus = 13
		colType   = 10
		colTime   = 19
	)
	name := width - colID - colStatus - colType - 2*colTime - 12
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: "ID", Width: colID},
		{Title: "Name", Width: name},
		{Title: "Status", Width: colStatus},
		{Title: "Type", Width: colType},
		{Title: "Started", Width: colTime},
		{Title: "Finished", Width: colTime},
	}
}

// SetSize adapts the table to the terminal.
func (m *Model) SetSize(width, height int) {
	m.Width, m.Height = width, height
	m.table.SetColumns(columns(width))
	h := height
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
}

// SetJobs replaces every row with jobs.
func (m *Model) SetJobs(jobs []awx.Job, updated time.Time) {
	m.jobs = jobs
	m.loaded = true
	m.failed = false
	m.expired = false
	m.label = "Last updated: " + updated.Format("15:04:05")

	rows := make([]table.Row, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, Row(j))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// SetError keeps the current rows and reports the failure in the label.
func (m *Model) SetError(err error) {
	m.failed = true
	m.label = "Update failed: " + err.Error()
}

// SessionExpired clears the table and marks the session as ended.
func (m *Model) SessionExpired() {
	m.Clear()
	m.expired = true
	m.failed = true
	m.label = (&awx.SessionExpiredError{}).Error()
}

// Clear removes all rows, as on disconnect.
func (m *Model) Clear() {
	m.jobs = nil
	m.loaded = false
	m.failed = false
	m.expired = false
	m.label = ""
	m.table.SetRows(nil)
	m.table.SetCursor(0)
}

// Jobs returns the rows currently shown.
func (m Model) Jobs() []awx.Job { return m.jobs }

// Label returns the last-updated or failure text.
func (m Model) Label() string { return m.label }

// Failed reports whether the label describes a failure.
func (m Model) Failed() bool { return m.failed }

// Expired reports whether the last poll ended the session.
func (m Model) Expired() bool { return m.expired }

// Selected returns the job under the cursor.
func (m Model) Selected() (awx.Job, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.jobs) {
		return awx.Job{}, false
	}
	return m.jobs[i], true
}

// Update forwards navigation keys to the table.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table, the empty-state indicator or nothing when no poll
// has landed yet.
func (m Model) View() string {
	var body string
	switch {
	case m.loaded && len(m.jobs) == 0:
		body = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Padding(1, 2).
			Render(EmptyText)
	case m.loaded:
		body = m.table.View()
	default:
		body = theme.StyleDimmed.Padding(1, 2).Render("Connect to see jobs")
	}

	label := theme.StyleDimmed.Render(m.label)
	if m.failed {
		label = theme.StyleError.Render(m.label)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, " "+label)
}

// Row formats one job as table cells. Missing timestamps render as "-".
func Row(j awx.Job) table.Row {
	return table.Row{
		strconv.Itoa(j.ID),
		j.Name,
		theme.StatusGlyph(string(j.Status)) + " " + string(j.Status),
		j.Type,
		FormatTime(j.Started),
		FormatTime(j.Finished),
	}
}

// FormatTime renders t in local time, or "-" when unset.
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// FormatElapsed renders seconds as a compact duration.
func FormatElapsed(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
