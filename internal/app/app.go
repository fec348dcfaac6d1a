package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	bhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/awx-monitor/tui/internal/awx"
	"github.com/awx-monitor/tui/internal/mock"
	"github.com/awx-monitor/tui/internal/poller"
	"github.com/awx-monitor/tui/internal/session"
	"github.com/awx-monitor/tui/internal/theme"
	"github.com/awx-monitor/tui/internal/views/connect"
	"github.com/awx-monitor/tui/internal/views/debug"
	"github.com/awx-monitor/tui/internal/views/detail"
	"github.com/awx-monitor/tui/internal/views/help"
	"github.com/awx-monitor/tui/internal/views/jobs"
	"github.com/awx-monitor/tui/internal/views/status"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayDebug
	OverlayHelp
)

// Notice texts shown in the modal.
const (
	NoticeMissingFields  = "Please fill in all fields"
	NoticeSessionExpired = "Session expired. Please reconnect."
)

// Options configures the root model.
type Options struct {
	Interval    time.Duration
	AutoRefresh bool
	HelpStyle   string
	// Mock, when set, enables the key that expires the mock session.
	Mock *mock.Server
}

// connectResultMsg carries the outcome of a ping check started by Begin.
type connectResultMsg struct {
	creds session.Credentials
	err   error
}

// Model is the root Bubble Tea model.
type Model struct {
	sess   *session.Manager
	poll   poller.Poller
	mock   *mock.Server
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	overlay Overlay
	notice  string

	// Sub-views.
	form      connect.Model
	statusBar status.Model
	jobs      jobs.Model
	detail    detail.Model
	debugLog  debug.Log
	help      help.Model
	footer    bhelp.Model
}

// New creates the root model around sess.
func New(sess *session.Manager, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	keys := DefaultKeyMap()
	keys.Expire.SetEnabled(opts.Mock != nil)

	p := poller.New(ctx, opts.Interval)
	// the poller starts with auto-refresh on; nothing is connected yet, so
	// the returned command is always nil here
	p.SetAutoRefresh(opts.AutoRefresh, sess)

	profile := sess.Profile()
	m := Model{
		sess:      sess,
		poll:      p,
		mock:      opts.Mock,
		ctx:       ctx,
		cancel:    cancel,
		keys:      keys,
		form:      connect.New(profile.URL, profile.Username),
		statusBar: status.New(),
		jobs:      jobs.New(),
		debugLog:  debug.New(),
		footer:    bhelp.New(),
		help: help.New(opts.HelpStyle, p.Interval().String(),
			help.Section{Title: "Connection", Bindings: []key.Binding{keys.NextField, keys.PrevField, keys.Connect, keys.Disconnect, keys.AutoRefresh}},
			help.Section{Title: "Jobs", Bindings: []key.Binding{keys.Up, keys.Down, keys.Detail, keys.Refresh}},
			help.Section{Title: "Other", Bindings: []key.Binding{keys.Debug, keys.Help, keys.Expire, keys.Escape, keys.Quit}},
		),
	}
	m.syncStatus()
	return m
}

// Init starts the cursor blink in the form.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case connectResultMsg:
		cmd = m.finishConnect(msg)

	case poller.TickMsg, poller.JobsMsg:
		cmd = m.poll.Update(msg, m.sess, &renderer{m: &m})

	case spinner.TickMsg:
		m.form, cmd = m.form.Update(msg)

	default:
		// cursor blink and other component messages
		m.form, cmd = m.form.Update(msg)
	}

	m.syncStatus()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// ctrl+c quits from every screen, notices and overlays included
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.notice != "" {
		if key.Matches(msg, m.keys.Escape, m.keys.Connect) {
			m.notice = ""
		}
		return m, nil
	}

	if m.overlay != OverlayNone {
		return m.handleOverlayKey(msg)
	}

	// printable input belongs to the form while it is editable
	if m.editing() && msg.Type == tea.KeyRunes {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Disconnect):
		m.disconnect("user")
		return m, nil

	case key.Matches(msg, m.keys.AutoRefresh):
		on := !m.poll.AutoRefresh()
		m.debugLog.Record(debug.Control(m.sess.Epoch(), "auto-refresh "+onOff(on)))
		return m, m.poll.SetAutoRefresh(on, m.sess)

	case key.Matches(msg, m.keys.Help):
		m.help.SetWidth(m.width)
		m.overlay = OverlayHelp
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil
	}

	if m.editing() {
		return m.handleFormKey(msg)
	}
	if m.sess.Connected() {
		return m.handleJobsKey(msg)
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Connect):
		return m.beginConnect()
	case key.Matches(msg, m.keys.NextField):
		return m, m.form.NextField()
	case key.Matches(msg, m.keys.PrevField):
		return m, m.form.PrevField()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) handleJobsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.debugLog.Record(debug.Control(m.sess.Epoch(), "manual refresh"))
		return m, m.poll.Refresh(m.sess)

	case key.Matches(msg, m.keys.Detail):
		if j, ok := m.jobs.Selected(); ok {
			m.detail = detail.New(j)
			m.overlay = OverlayDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Expire):
		if m.mock != nil {
			m.mock.Expire()
			m.debugLog.Record(debug.Control(m.sess.Epoch(), "mock: next jobs request answers 401"))
		}
		return m, nil

	case key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.jobs, cmd = m.jobs.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.overlay = OverlayNone
	case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Up):
		m.debugLog.Scroll(1)
	case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Down):
		m.debugLog.Scroll(-1)
	case m.overlay == OverlayHelp && key.Matches(msg, m.keys.Help):
		m.overlay = OverlayNone
	}
	return m, nil
}

// editing reports whether the connect form accepts input.
func (m Model) editing() bool {
	return m.sess.State() == session.Disconnected
}

func (m Model) beginConnect() (Model, tea.Cmd) {
	url, username, password := m.form.Values()
	creds, err := m.sess.Begin(url, username, password)
	if err != nil {
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			m.notice = NoticeMissingFields
		}
		m.debugLog.Record(debug.ConnectResult(m.sess.Epoch(), url, err))
		return m, nil
	}

	m.debugLog.Record(debug.Connecting(m.sess.Epoch(), creds.URL, creds.Username))
	m.form.SetLocked(true)
	sess, ctx := m.sess, m.ctx
	verify := func() tea.Msg {
		return connectResultMsg{creds: creds, err: sess.Verify(ctx, creds)}
	}
	return m, tea.Batch(m.form.SetBusy(true), verify)
}

func (m *Model) finishConnect(msg connectResultMsg) tea.Cmd {
	err := m.sess.Finish(msg.creds, msg.err)
	if errors.Is(err, session.ErrStale) {
		m.debugLog.Record(debug.Session(m.sess.Epoch(), "dropped connect result for "+msg.creds.URL))
		return nil
	}

	m.form.SetBusy(false)
	if err != nil {
		m.form.SetLocked(false)
		m.notice = connectNotice(err)
		m.debugLog.Record(debug.ConnectResult(m.sess.Epoch(), msg.creds.URL, msg.err))
		return nil
	}

	p := m.sess.Profile()
	m.form.SetProfile(p.URL, p.Username)
	m.debugLog.Record(debug.ConnectResult(m.sess.Epoch(), p.URL, nil))
	return m.poll.Connected(m.sess)
}

// disconnect tears down the session, the poller and the rendered jobs.
func (m *Model) disconnect(reason string) {
	if !m.sess.Disconnect() {
		return
	}
	m.poll.Stop()
	m.afterDisconnect()
	m.debugLog.Record(debug.Session(m.sess.Epoch(), "disconnected ("+reason+")"))
}

func (m *Model) afterDisconnect() {
	m.jobs.Clear()
	m.form.SetBusy(false)
	m.form.SetLocked(false)
	m.form.ClearPassword()
	if m.overlay == OverlayDetail {
		m.overlay = OverlayNone
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	m.poll.Stop()
	m.cancel()
	log.Info().Msg("app: quit")
	return m, tea.Quit
}

func connectNotice(err error) string {
	var authErr *awx.AuthenticationError
	var netErr *awx.NetworkError
	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("Connection failed: %d %s", authErr.Status, authErr.StatusText)
	case errors.As(err, &netErr):
		return "Connection error: " + netErr.Err.Error()
	default:
		return "Connection error: " + err.Error()
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (m *Model) syncStatus() {
	m.statusBar.Status = m.sess.Status()
	m.statusBar.AutoRefresh = m.poll.AutoRefresh()
	m.statusBar.Polling = m.poll.Active()
	m.statusBar.Jobs = len(m.jobs.Jobs())
}

func (m *Model) layout() {
	m.statusBar.Width = m.width
	m.form.Width = m.width - 4
	m.footer.Width = m.width
	m.help.SetWidth(m.width)

	used := lipgloss.Height(m.statusBar.View()) + lipgloss.Height(m.form.View()) + 3
	m.jobs.SetSize(m.width-2, m.height-used)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	keys := m.keys.formKeys()
	if !m.editing() {
		keys = m.keys.connectedKeys()
	}

	base := lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		m.form.View(),
		m.jobs.View(),
		m.footer.ShortHelpView(keys),
	)

	var modal string
	switch {
	case m.notice != "":
		modal = renderNotice(m.notice)
	case m.overlay == OverlayDetail:
		modal = m.detail.View()
	case m.overlay == OverlayDebug:
		modal = m.debugLog.View(m.width-4, m.height-2)
	case m.overlay == OverlayHelp:
		modal = m.help.View()
	}
	if modal == "" {
		return base
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func renderNotice(text string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleError.Render(text),
		"",
		theme.StyleDimmed.Render("enter/esc:dismiss"),
	)
	return lipgloss.NewStyle().
		Padding(1, 3).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorDanger).
		Render(body)
}

// renderer adapts the root model to poller.Renderer.
type renderer struct {
	m *Model
}

func (r *renderer) SetJobs(list []awx.Job, updated time.Time) {
	r.m.jobs.SetJobs(list, updated)
	r.m.detail.Refresh(list)
	r.m.debugLog.Record(debug.Polled(r.m.sess.Epoch(), list, updated))
}

func (r *renderer) SetError(err error) {
	r.m.jobs.SetError(err)
	r.m.debugLog.Record(debug.PollFailed(r.m.sess.Epoch(), err))
}

func (r *renderer) SessionExpired() {
	r.m.afterDisconnect()
	r.m.jobs.SessionExpired()
	r.m.notice = NoticeSessionExpired
	r.m.debugLog.Record(debug.PollFailed(r.m.sess.Epoch(), &awx.SessionExpiredError{}))
}
