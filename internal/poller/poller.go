// Package poller drives the periodic jobs refresh. The repeating trigger is a
// chain of tea.Tick commands; each tick carries the tag that was current when
// it was scheduled, and ticks whose tag has since moved on are dropped. That
// keeps at most one live chain no matter how often Start is called.
package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/awx-monitor/tui/internal/awx"
)

// DefaultInterval is the refresh period.
const DefaultInterval = 5 * time.Second

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Session is the part of the connection owner the poller reads and drives.
type Session interface {
	Connected() bool
	Epoch() uint64
	Fetcher() *awx.Client
	Expire() bool
}

// Renderer receives the outcome of every poll cycle.
type Renderer interface {
	// SetJobs replaces whatever was shown with jobs.
	SetJobs(jobs []awx.Job, updated time.Time)
	// SetError reports a failed cycle inline. Previously shown jobs stay.
	SetError(err error)
	// SessionExpired is called once when a 401 ends the session.
	SessionExpired()
}

// TickMsg is one firing of the repeating trigger.
type TickMsg struct {
	ID   int
	Tag  int
	Time time.Time
}

// JobsMsg carries the result of one jobs fetch.
type JobsMsg struct {
	ID    int
	Epoch uint64
	Jobs  []awx.Job
	Err   error
	At    time.Time
}

// Poller owns the refresh trigger.
type Poller struct {
	id       int
	tag      int
	active   bool
	auto     bool
	interval time.Duration
	ctx      context.Context
}

// New creates a stopped poller with auto-refresh on. Requests inherit ctx,
// which the caller cancels on shutdown. Intervals <= 0 use DefaultInterval.
func New(ctx context.Context, interval time.Duration) Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Poller{
		id:       nextID(),
		auto:     true,
		interval: interval,
		ctx:      ctx,
	}
}

// ID identifies this poller's messages.
func (p Poller) ID() int { return p.id }

// Active reports whether a tick chain is live.
func (p Poller) Active() bool { return p.active }

// AutoRefresh reports the toggle state.
func (p Poller) AutoRefresh() bool { return p.auto }

// Interval returns the refresh period.
func (p Poller) Interval() time.Duration { return p.interval }

// Start cancels any live chain, fetches immediately and schedules the next
// tick.
func (p *Poller) Start(s Session) tea.Cmd {
	p.tag++
	p.active = true
	log.Debug().Int("poller", p.id).Int("tag", p.tag).Dur("interval", p.interval).Msg("poller: start")
	return tea.Batch(p.fetch(s), p.schedule())
}

// Stop cancels the live chain, if any.
func (p *Poller) Stop() {
	if !p.active {
		return
	}
	p.tag++
	p.active = false
	log.Debug().Int("poller", p.id).Msg("poller: stop")
}

// SetAutoRefresh flips the toggle. Turning it on while connected starts
// polling; turning it off stops it.
func (p *Poller) SetAutoRefresh(on bool, s Session) tea.Cmd {
	p.auto = on
	if on && s.Connected() {
		return p.Start(s)
	}
	p.Stop()
	return nil
}

// Connected is called after the session reaches Connected.
func (p *Poller) Connected(s Session) tea.Cmd {
	if !p.auto {
		// still show the current jobs once, as on a fresh connect
		return p.fetch(s)
	}
	return p.Start(s)
}

// Refresh fetches once without touching the tick chain.
func (p *Poller) Refresh(s Session) tea.Cmd {
	return p.fetch(s)
}

// Update handles TickMsg and JobsMsg addressed to this poller.
func (p *Poller) Update(msg tea.Msg, s Session, r Renderer) tea.Cmd {
	switch msg := msg.(type) {
	case TickMsg:
		if msg.ID != p.id || msg.Tag != p.tag || !p.active {
			return nil
		}
		if !s.Connected() {
			p.Stop()
			return nil
		}
		return tea.Batch(p.fetch(s), p.schedule())

	case JobsMsg:
		if msg.ID != p.id {
			return nil
		}
		if msg.Epoch != s.Epoch() {
			log.Debug().Uint64("epoch", msg.Epoch).Uint64("current", s.Epoch()).Msg("poller: dropped stale result")
			return nil
		}
		p.deliver(msg, s, r)
	}
	return nil
}

func (p *Poller) deliver(msg JobsMsg, s Session, r Renderer) {
	if msg.Err == nil {
		r.SetJobs(msg.Jobs, msg.At)
		return
	}

	var expired *awx.SessionExpiredError
	if errors.As(msg.Err, &expired) {
		p.Stop()
		if s.Expire() {
			r.SessionExpired()
		}
		return
	}

	log.Warn().Err(msg.Err).Int("poller", p.id).Msg("poller: fetch failed")
	r.SetError(msg.Err)
}

func (p *Poller) fetch(s Session) tea.Cmd {
	if !s.Connected() {
		return nil
	}
	client := s.Fetcher()
	if client == nil {
		return nil
	}
	id, epoch, ctx := p.id, s.Epoch(), p.ctx
	return func() tea.Msg {
		jobs, err := client.ListJobs(ctx)
		return JobsMsg{ID: id, Epoch: epoch, Jobs: jobs, Err: err, At: time.Now()}
	}
}

func (p *Poller) schedule() tea.Cmd {
	id, tag := p.id, p.tag
	return tea.Tick(p.interval, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Tag: tag, Time: t}
	})
}
