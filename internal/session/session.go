// Package session owns the AWX connection lifecycle: which controller the
// monitor talks to, the in-memory credentials, and the
// Disconnected/Connecting/Connected state machine.
//
// A Manager is not safe for concurrent use. All mutating calls are made from
// the UI event loop; only Verify may run on a background goroutine.
package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/awx-monitor/tui/internal/awx"
	"github.com/awx-monitor/tui/internal/store"
)

// State is the connectivity state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Profile is the persisted half of the credentials.
type Profile struct {
	URL      string
	Username string
}

// Secret is the memory-only half of the credentials. Its fields are never
// printed, logged or stored.
type Secret struct {
	password   string
	authHeader string
}

// Empty reports whether the secret has been cleared.
func (s Secret) Empty() bool { return s.password == "" && s.authHeader == "" }

// AuthHeader returns the Authorization header value.
func (s Secret) AuthHeader() string { return s.authHeader }

func (s Secret) String() string { return "[redacted]" }

// Credentials is a validated connection attempt. It is produced by Begin and
// is only meaningful to the Manager that produced it.
type Credentials struct {
	Profile
	Secret Secret
	epoch  uint64
}

// Tone classifies the status line for the renderer.
type Tone int

const (
	ToneMuted Tone = iota
	ToneBusy
	ToneHealthy
)

// Status is the connectivity label shown to the user.
type Status struct {
	Text string
	Tone Tone
}

// Manager holds the single mutable connection state.
type Manager struct {
	store      store.Store
	clientOpts []awx.Option

	state   State
	profile Profile
	secret  Secret
	client  *awx.Client
	epoch   uint64
}

// New creates a disconnected Manager. The profile is prefilled from st,
// falling back to defaults for keys that were never stored.
func New(st store.Store, defaults Profile, clientOpts ...awx.Option) *Manager {
	p := defaults
	if v, ok := st.Get(store.KeyURL); ok && v != "" {
		p.URL = v
	}
	if v, ok := st.Get(store.KeyUsername); ok && v != "" {
		p.Username = v
	}
	return &Manager{
		store:      st,
		clientOpts: clientOpts,
		profile:    p,
	}
}

func (m *Manager) State() State { return m.state }

func (m *Manager) Connected() bool { return m.state == Connected }

// Profile returns the URL and username of the last successful connect, or
// the stored defaults before one.
func (m *Manager) Profile() Profile { return m.profile }

// AuthHeader returns the header of the live session, "" when disconnected.
func (m *Manager) AuthHeader() string { return m.secret.authHeader }

// Epoch changes on every connect attempt and every disconnect. Work started
// under one epoch must be discarded if the epoch has moved on.
func (m *Manager) Epoch() uint64 { return m.epoch }

// Status returns the connectivity label for the current state.
func (m *Manager) Status() Status {
	switch m.state {
	case Connecting:
		return Status{Text: "Connecting...", Tone: ToneBusy}
	case Connected:
		return Status{
			Text: "Connected to " + m.profile.URL + " as " + m.profile.Username,
			Tone: ToneHealthy,
		}
	default:
		return Status{Text: "Not Connected", Tone: ToneMuted}
	}
}

// Fetcher returns the client for the current credentials, or nil when not
// connected. The client is immutable and may be used after a disconnect;
// callers compare Epoch to decide whether its results still apply.
func (m *Manager) Fetcher() *awx.Client {
	if m.state != Connected {
		return nil
	}
	return m.client
}

// NormalizeURL strips surrounding whitespace and exactly one trailing slash.
func NormalizeURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}

// Begin validates a connection attempt and enters Connecting. On error the
// state is unchanged.
func (m *Manager) Begin(url, username, password string) (Credentials, error) {
	switch m.state {
	case Connecting:
		return Credentials{}, ErrBusy
	case Connected:
		return Credentials{}, ErrAlreadyConnected
	}

	in := input{
		URL:      NormalizeURL(url),
		Username: username,
		Password: password,
	}
	if err := in.validate(); err != nil {
		return Credentials{}, err
	}

	m.epoch++
	m.state = Connecting
	log.Debug().Str("url", in.URL).Str("username", in.Username).Msg("session: connecting")

	return Credentials{
		Profile: Profile{URL: in.URL, Username: in.Username},
		Secret: Secret{
			password:   in.Password,
			authHeader: awx.BasicAuth(in.Username, in.Password),
		},
		epoch: m.epoch,
	}, nil
}

// Verify pings the controller with c. It touches no Manager state and may run
// off the UI loop.
func (m *Manager) Verify(ctx context.Context, c Credentials) error {
	_, err := m.newClient(c).Ping(ctx)
	return err
}

// Finish commits the outcome of the ping check for c. On success the profile is
// persisted and the state becomes Connected; on failure the state returns to
// Disconnected and the ping error is returned. Attempts superseded by a
// Disconnect return ErrStale and change nothing.
func (m *Manager) Finish(c Credentials, pingErr error) error {
	if m.state != Connecting || c.epoch != m.epoch {
		return ErrStale
	}

	if pingErr != nil {
		m.state = Disconnected
		log.Warn().Err(pingErr).Str("url", c.URL).Msg("session: connect failed")
		return errors.WithMessage(pingErr, "connect "+c.URL)
	}

	m.profile = c.Profile
	if err := m.store.Set(store.KeyURL, c.URL); err != nil {
		log.Error().Err(err).Msg("session: persist url")
	}
	if err := m.store.Set(store.KeyUsername, c.Username); err != nil {
		log.Error().Err(err).Msg("session: persist username")
	}

	m.secret = c.Secret
	m.client = m.newClient(c)
	m.state = Connected
	log.Info().Str("url", c.URL).Str("username", c.Username).Msg("session: connected")
	return nil
}

// Connect runs Begin, Verify and Finish in sequence.
func (m *Manager) Connect(ctx context.Context, url, username, password string) error {
	c, err := m.Begin(url, username, password)
	if err != nil {
		return err
	}
	return m.Finish(c, m.Verify(ctx, c))
}

// Disconnect drops the credentials and returns to Disconnected. It reports
// whether anything changed; calling it while disconnected is a no-op.
func (m *Manager) Disconnect() bool {
	if m.state == Disconnected && m.secret.Empty() && m.client == nil {
		return false
	}
	from := m.state
	m.clear()
	log.Info().Str("from", from.String()).Msg("session: disconnected")
	return true
}

// Expire is the disconnect path for a 401 seen while polling. It only acts
// on a connected session.
func (m *Manager) Expire() bool {
	if m.state != Connected {
		return false
	}
	m.clear()
	log.Warn().Str("url", m.profile.URL).Msg("session: expired")
	return true
}

func (m *Manager) clear() {
	m.secret = Secret{}
	m.client = nil
	m.state = Disconnected
	m.epoch++
}

func (m *Manager) newClient(c Credentials) *awx.Client {
	return awx.NewClient(c.URL, c.Secret.authHeader, m.clientOpts...)
}
