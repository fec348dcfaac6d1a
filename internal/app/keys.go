package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard bindings for the TUI. While the connect form
// is editable, printable keys go to the form, so every action that has a
// letter key also has a control or function key.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextField   key.Binding
	PrevField   key.Binding
	Connect     key.Binding
	Disconnect  key.Binding
	AutoRefresh key.Binding
	Refresh     key.Binding
	Detail      key.Binding
	Debug       key.Binding
	Help        key.Binding
	Expire      key.Binding
	Escape      key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev job"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next job"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "disconnect"),
		),
		AutoRefresh: key.NewBinding(
			key.WithKeys("a", "ctrl+t"),
			key.WithHelp("a", "toggle auto-refresh"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "refresh now"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "job detail"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d", "f2"),
			key.WithHelp("d", "debug log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		Expire: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "expire mock session"),
			key.WithDisabled(),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// formKeys are shown in the footer while the form is editable.
func (k KeyMap) formKeys() []key.Binding {
	return []key.Binding{k.NextField, k.Connect, k.AutoRefresh, k.Help, k.Quit}
}

// connectedKeys are shown in the footer while connected.
func (k KeyMap) connectedKeys() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Detail, k.Refresh, k.AutoRefresh, k.Disconnect, k.Debug, k.Expire, k.Help, k.Quit}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return k.connectedKeys()
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Connect, k.Disconnect},
		{k.Up, k.Down, k.Detail, k.Refresh, k.AutoRefresh},
		{k.Debug, k.Help, k.Expire, k.Escape, k.Quit},
	}
}
