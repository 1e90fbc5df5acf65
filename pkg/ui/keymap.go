package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for all views.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Focus      key.Binding
	Direction  key.Binding
	DepthUp    key.Binding
	DepthDown  key.Binding
	SwitchView key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "previous issue"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next issue"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "scroll columns left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "scroll columns right"),
		),
		Focus: key.NewBinding(
			key.WithKeys("f", "enter"),
			key.WithHelp("f", "focus subgraph"),
		),
		Direction: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "cycle focus direction"),
		),
		DepthUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "increase focus depth"),
		),
		DepthDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "decrease focus depth"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab", "g"),
			key.WithHelp("tab", "toggle PERT/timeline"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload issues"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchView, k.Focus, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Focus, k.Direction, k.DepthUp, k.DepthDown},
		{k.SwitchView, k.Reload, k.Help, k.Quit},
	}
}
