// Package debug records what the monitor did to the controller and renders
// it as the F2 overlay. Each event carries the session epoch it belongs to
// and, where the server answered, the HTTP status.
package debug

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/awx-monitor/tui/internal/awx"
	"github.com/awx-monitor/tui/internal/theme"
)

const limit = 200

type Kind int

const (
	KindSession Kind = iota // connected, disconnected, superseded
	KindConnect             // connect attempt and its ping result
	KindPoll                // one jobs listing
	KindExpired             // 401 on the jobs listing
	KindControl             // user toggles and mock controls
)

var kindLabels = map[Kind]string{
	KindSession: "sess",
	KindConnect: "conn",
	KindPoll:    "poll",
	KindExpired: "exp",
	KindControl: "ctl",
}

func (k Kind) String() string { return kindLabels[k] }

// Event is one log line. Fields that do not apply to Kind stay zero.
type Event struct {
	At    time.Time
	Kind  Kind
	Epoch uint64
	// Status is the HTTP status the server answered with, 0 when no answer
	// was received.
	Status int
	Note   string
	Err    error

	// poll results
	Jobs   int
	Active int
	Failed int
}

// Connecting records the start of a connect attempt.
func Connecting(epoch uint64, url, username string) Event {
	return Event{At: time.Now(), Kind: KindConnect, Epoch: epoch, Note: username + "@" + url}
}

// ConnectResult records how an attempt ended. A nil err means the controller
// answered the ping with 2xx.
func ConnectResult(epoch uint64, url string, err error) Event {
	e := Event{At: time.Now(), Kind: KindConnect, Epoch: epoch, Note: url, Err: err, Status: StatusOf(err)}
	if err == nil {
		e.Kind = KindSession
		e.Note = "connected to " + url
	}
	return e
}

// Session records a session transition such as a disconnect.
func Session(epoch uint64, note string) Event {
	return Event{At: time.Now(), Kind: KindSession, Epoch: epoch, Note: note}
}

// Polled summarises a successful jobs listing received at.
func Polled(epoch uint64, jobs []awx.Job, at time.Time) Event {
	e := Event{At: at, Kind: KindPoll, Epoch: epoch, Status: http.StatusOK, Jobs: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case awx.StatusFailed, awx.StatusError:
			e.Failed++
		case awx.StatusPending, awx.StatusWaiting, awx.StatusRunning:
			e.Active++
		}
	}
	return e
}

// PollFailed records a jobs listing that produced no rows.
func PollFailed(epoch uint64, err error) Event {
	kind := KindPoll
	var expired *awx.SessionExpiredError
	if errors.As(err, &expired) {
		kind = KindExpired
	}
	return Event{At: time.Now(), Kind: kind, Epoch: epoch, Status: StatusOf(err), Err: err}
}

// Control records a user action that changes how polling behaves.
func Control(epoch uint64, note string) Event {
	return Event{At: time.Now(), Kind: KindControl, Epoch: epoch, Note: note}
}

// StatusOf extracts the HTTP status behind an awx error. Undecodable bodies
// arrived with 200; transport failures have none.
func StatusOf(err error) int {
	var (
		authErr   *awx.AuthenticationError
		fetchErr  *awx.FetchError
		expired   *awx.SessionExpiredError
		renderErr *awx.RenderError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &authErr):
		return authErr.Status
	case errors.As(err, &fetchErr):
		return fetchErr.Status
	case errors.As(err, &expired):
		return http.StatusUnauthorized
	case errors.As(err, &renderErr):
		return http.StatusOK
	}
	return 0
}

// Summary is the message column for e.
func (e Event) Summary() string {
	switch {
	case e.Kind == KindPoll && e.Err == nil:
		return fmt.Sprintf("%d jobs, %d active, %d failed", e.Jobs, e.Active, e.Failed)
	case e.Kind == KindExpired:
		return "session expired, credentials dropped"
	case e.Err != nil && e.Note != "":
		return e.Note + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Note
}

// Log is a capped event list with a scroll position counted in events from
// the newest.
type Log struct {
	events []Event
	back   int
}

func New() Log {
	return Log{}
}

// Record appends e. While the user is scrolled back the view stays on the
// same events.
func (l *Log) Record(e Event) {
	l.events = append(l.events, e)
	if len(l.events) > limit {
		l.events = l.events[len(l.events)-limit:]
	}
	if l.back > 0 {
		l.back = min(l.back+1, len(l.events)-1)
	}
}

func (l *Log) Events() []Event { return l.events }

// Scroll moves the view by delta events; positive goes back in time.
func (l *Log) Scroll(delta int) {
	l.back = max(0, min(l.back+delta, len(l.events)-1))
}

// View renders the overlay panel.
func (l Log) View(width, height int) string {
	innerW := max(width-4, 40)
	rows := max(height-7, 3)

	title := theme.StyleHeader.Render(" DEBUG LOG ")
	footer := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d events", len(l.events)))

	body := theme.StyleDimmed.Render("  Nothing recorded yet.")
	if len(l.events) > 0 {
		end := len(l.events) - l.back
		start := max(0, end-rows)
		lines := make([]string, 0, end-start+1)
		for _, e := range l.events[start:end] {
			lines = append(lines, line(e, innerW-4))
		}
		if l.back > 0 {
			lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("  %d newer below", l.back)))
		}
		body = strings.Join(lines, "\n")
	}

	return lipgloss.NewStyle().
		Width(innerW).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer))
}

// prefixWidth covers "15:04:05.000 kind #epo sta ".
const prefixWidth = 12 + 1 + 4 + 1 + 4 + 1 + 3 + 1

// line lays out time, kind, epoch, status and summary in fixed columns.
func line(e Event, width int) string {
	status := "---"
	if e.Status != 0 {
		status = fmt.Sprintf("%3d", e.Status)
	}
	msg := e.Summary()
	if room := width - prefixWidth; room > 3 && len(msg) > room {
		msg = msg[:room-3] + "..."
	}
	return strings.Join([]string{
		theme.StyleDimmed.Render(e.At.Format("15:04:05.000")),
		lipgloss.NewStyle().Foreground(kindColor(e)).Render(fmt.Sprintf("%-4s", e.Kind)),
		theme.StyleDimmed.Render(fmt.Sprintf("#%-3d", e.Epoch)),
		lipgloss.NewStyle().Foreground(statusColor(e.Status)).Render(status),
		msg,
	}, " ")
}

func kindColor(e Event) lipgloss.Color {
	switch {
	case e.Err != nil && e.Kind != KindExpired:
		return theme.ColorDanger
	case e.Kind == KindSession:
		return theme.ColorHealthy
	case e.Kind == KindPoll:
		return theme.ColorRunning
	case e.Kind == KindConnect:
		return theme.ColorAccent
	case e.Kind == KindExpired:
		return theme.ColorWarning
	}
	return theme.ColorDimmed
}

func statusColor(status int) lipgloss.Color {
	switch {
	case status == 0:
		return theme.ColorDimmed
	case status < 300:
		return theme.ColorHealthy
	case status < 500:
		return theme.ColorWarning
	}
	return theme.ColorDanger
}
