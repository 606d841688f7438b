package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	TabNext  key.Binding
	TabPrev  key.Binding
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Country  key.Binding
	Reprobe  key.Binding
	Enter    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	TabNext: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	TabPrev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev tab"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right", "l", "n"),
		key.WithHelp("→/n", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left", "h", "p"),
		key.WithHelp("←/p", "prev page"),
	),
	Country: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "country"),
	),
	Reprobe: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "re-probe page"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "show link"),
	),
}

// ShortHelp returns a compact list for the help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Country, k.Reprobe, k.Enter, k.Help, k.Quit}
}

// FullHelp returns grouped bindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TabNext, k.TabPrev, k.Up, k.Down},
		{k.NextPage, k.PrevPage, k.Country},
		{k.Reprobe, k.Enter},
		{k.Help, k.Quit},
	}
}
