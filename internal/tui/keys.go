package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	NextLevel key.Binding
	PrevLevel key.Binding
	Undo      key.Binding
	Clear     key.Binding
	Demo      key.Binding
	Speak     key.Binding
	Dismiss   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		Prev:      key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous")),
		NextLevel: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next level")),
		PrevLevel: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous level")),
		Undo:      key.NewBinding(key.WithKeys("u", "backspace"), key.WithHelp("u", "undo")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Demo:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "demo")),
		Speak:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "speak")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Undo, k.Clear, k.Speak, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.NextLevel, k.PrevLevel},
		{k.Undo, k.Clear, k.Dismiss},
		{k.Demo, k.Speak, k.Help, k.Quit},
	}
}
