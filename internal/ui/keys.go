package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play    key.Binding
	Back    key.Binding
	Forward key.Binding
	VolUp   key.Binding
	VolDown key.Binding
	Repeat  key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "seek"),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		VolUp: key.NewBinding(
			key.WithKeys("up", "k", "+", "="),
			key.WithHelp("+/-", "volume"),
		),
		VolDown: key.NewBinding(
			key.WithKeys("down", "j", "-"),
		),
		Repeat: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "repeat"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Back, k.VolUp, k.Repeat, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
