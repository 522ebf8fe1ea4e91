package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the list view bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Back     key.Binding
	Refresh  key.Binding
	Units    key.Binding
	Layout   key.Binding
	Location key.Binding
	Language key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Units: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "°C/°F"),
		),
		Layout: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today card"),
		),
		Location: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "location"),
		),
		Language: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "language"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.Units, k.Location, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Refresh, k.Units, k.Layout, k.Location, k.Language, k.Quit},
	}
}
