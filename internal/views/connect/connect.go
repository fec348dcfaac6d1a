// Package connect renders the controller URL / username / password form.
package connect

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/awx-monitor/tui/internal/theme"
)

// Field indexes.
const (
	FieldURL = iota
	FieldUsername
	FieldPassword
	fieldCount
)

var (
	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(10)

	styleButton = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright).
			Background(theme.ColorAccent).
			Padding(0, 2)

	styleButtonBusy = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Padding(0, 2)
)

var labels = [fieldCount]string{"URL", "Username", "Password"}

// Model is the connect form. While Locked the inputs ignore keys; while Busy
// the connect action is unavailable and a spinner is shown.
type Model struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	spinner spinner.Model

	Busy   bool
	Locked bool
	Width  int
}

// New creates a form prefilled with url and username.
func New(url, username string) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 512
		in.Width = 48
		inputs[i] = in
	}
	inputs[FieldURL].Placeholder = "https://awx.example.com"
	inputs[FieldURL].SetValue(url)
	inputs[FieldUsername].Placeholder = "admin"
	inputs[FieldUsername].SetValue(username)
	inputs[FieldPassword].Placeholder = "password"
	inputs[FieldPassword].EchoMode = textinput.EchoPassword
	inputs[FieldPassword].EchoCharacter = '•'

	m := Model{
		inputs:  inputs,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	// start on the first empty field, which is usually the password
	m.focus = FieldPassword
	for i := range m.inputs {
		if m.inputs[i].Value() == "" {
			m.focus = i
			break
		}
	}
	m.inputs[m.focus].Focus()
	return m
}

// Values returns url, username and password as typed.
func (m Model) Values() (url, username, password string) {
	return m.inputs[FieldURL].Value(), m.inputs[FieldUsername].Value(), m.inputs[FieldPassword].Value()
}

// Focused returns the index of the focused field.
func (m Model) Focused() int { return m.focus }

// SetBusy toggles the busy indicator. The returned command drives the
// spinner and must be run when turning busy on.
func (m *Model) SetBusy(busy bool) tea.Cmd {
	m.Busy = busy
	if busy {
		return m.spinner.Tick
	}
	return nil
}

// SetLocked disables or re-enables editing.
func (m *Model) SetLocked(locked bool) {
	m.Locked = locked
	if locked {
		m.inputs[m.focus].Blur()
		return
	}
	m.inputs[m.focus].Focus()
}

// ClearPassword wipes the password input.
func (m *Model) ClearPassword() {
	m.inputs[FieldPassword].Reset()
}

// SetProfile overwrites the url and username inputs.
func (m *Model) SetProfile(url, username string) {
	m.inputs[FieldURL].SetValue(url)
	m.inputs[FieldUsername].SetValue(username)
}

// NextField moves focus forward, wrapping.
func (m *Model) NextField() tea.Cmd {
	return m.setFocus((m.focus + 1) % fieldCount)
}

// PrevField moves focus backward, wrapping.
func (m *Model) PrevField() tea.Cmd {
	return m.setFocus((m.focus - 1 + fieldCount) % fieldCount)
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	if m.Locked {
		return nil
	}
	return m.inputs[m.focus].Focus()
}

// Update forwards key input to the focused field and spinner ticks to the
// spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Locked || m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	default:
		if m.Locked {
			return m, nil
		}
		// cursor blink
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
}

// View renders the form.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("AWX Connection") + "\n")

	for i, in := range m.inputs {
		marker := "  "
		if i == m.focus && !m.Locked {
			marker = lipgloss.NewStyle().Foreground(theme.ColorAccent).Render("> ")
		}
		value := in.View()
		if m.Locked {
			value = theme.StyleDimmed.Render(lockedValue(in))
		}
		b.WriteString(marker + styleLabel.Render(labels[i]+":") + value + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.Busy:
		b.WriteString(styleButtonBusy.Render(m.spinner.View() + " Connecting..."))
	case m.Locked:
		b.WriteString(theme.StyleDimmed.Render("ctrl+d disconnect"))
	default:
		b.WriteString(styleButton.Render("Connect") + theme.StyleDimmed.Render("  enter"))
	}

	width := m.Width
	if width < 40 {
		width = 40
	}
	return theme.StyleBorder.Width(width).Padding(0, 1).Render(b.String())
}

func lockedValue(in textinput.Model) string {
	if in.EchoMode == textinput.EchoPassword {
		return strings.Repeat("•", len([]rune(in.Value())))
	}
	return in.Value()
}
