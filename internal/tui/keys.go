package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start, Stop, Rate, Clear, Export key.Binding
	Tab1, Tab2, Tab3, Tab            key.Binding
	Help, Enter, Back                key.Binding
	Up, Down, Left, Right            key.Binding
	Quit                             key.Binding
}

// bind creates a binding whose help label is the first key.
func bind(desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], desc))
}

var keys = keyMap{
	Start:  bind("sleep", "s"),
	Stop:   bind("wake up", "x"),
	Rate:   bind("rate night", "r"),
	Clear:  bind("clear history", "c"),
	Export: bind("export", "e"),
	Tab1:   bind("tonight", "1"),
	Tab2:   bind("report", "2"),
	Tab3:   bind("settings", "3"),
	Tab:    bind("next view", "tab"),
	Help:   bind("help", "?"),
	Enter:  bind("select", "enter"),
	Back:   bind("back", "esc"),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "older"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "newer"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Rate, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Rate, k.Clear},
		{k.Export, k.Up, k.Down},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab},
		{k.Left, k.Right, k.Enter, k.Back, k.Quit},
	}
}
